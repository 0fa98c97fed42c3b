package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type ClientDTO struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	TaxID             string       `json:"taxId,omitempty"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone,omitempty"`
	Address           string       `json:"address,omitempty"`
	City              string       `json:"city,omitempty"`
	Country           string       `json:"country"`
	ContactPerson     string       `json:"contactPerson,omitempty"`
	ContactEmail      string       `json:"contactEmail,omitempty"`
	PreferredIncoterm Incoterm     `json:"preferredIncoterm"`
	Status            ClientStatus `json:"status"`
	Notes             string       `json:"notes,omitempty"`
	ActiveQuotations  int          `json:"activeQuotations,omitempty"`
	CreatedAt         string       `json:"createdAt"` // ISO 8601
	UpdatedAt         string       `json:"updatedAt"` // ISO 8601
}

type SupplierDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	City          string    `json:"city,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	ContactPerson string    `json:"contactPerson,omitempty"`
	Website       string    `json:"website,omitempty"`
	LeadTimeDays  int       `json:"leadTimeDays"`
	Rating        float64   `json:"rating"`
	IsActive      bool      `json:"isActive"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

type ProductDTO struct {
	ID            uuid.UUID  `json:"id"`
	SKU           string     `json:"sku,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	SupplierID    *uuid.UUID `json:"supplierId,omitempty"`
	SupplierName  string     `json:"supplierName,omitempty"`
	HSCode        string     `json:"hsCode,omitempty"`
	HSDutyPercent float64    `json:"hsDutyPercent"`
	UnitOfMeasure string     `json:"unitOfMeasure"`
	UnitCost      float64    `json:"unitCost"`
	UnitPrice     float64    `json:"unitPrice"`
	Currency      string     `json:"currency"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     string     `json:"createdAt"`
	UpdatedAt     string     `json:"updatedAt"`
}

type QuotationDTO struct {
	ID              uuid.UUID          `json:"id"`
	QuotationNumber string             `json:"quotationNumber,omitempty"` // Unique per year, e.g. "QT-2026-0001"
	Title           string             `json:"title"`
	ClientID        uuid.UUID          `json:"clientId"`
	ClientName      string             `json:"clientName,omitempty"`
	Status          QuotationStatus    `json:"status"`
	Incoterm        Incoterm           `json:"incoterm"`
	Currency        string             `json:"currency"`
	PortOfEntry     string             `json:"portOfEntry,omitempty"`
	FreightCost     float64            `json:"freightCost"`
	InsuranceCost   float64            `json:"insuranceCost"`
	InspectionCost  float64            `json:"inspectionCost"`
	OtherCosts      float64            `json:"otherCosts"`
	FreightNationalCost float64        `json:"freightNationalCost"`
	NationalizationCost float64        `json:"nationalizationCost"`
	TariffPercent   float64            `json:"tariffPercent"`
	DiscountPercent float64            `json:"discountPercent"`
	MarginPercent   float64            `json:"marginPercent"`
	ExchangeRate    float64            `json:"exchangeRate"`
	Subtotal        float64            `json:"subtotal"`
	DiscountAmount  float64            `json:"discountAmount"`
	Total           float64            `json:"total"`
	GrandTotal      float64            `json:"grandTotal"`
	ValidFrom       *string            `json:"validFrom,omitempty"`  // ISO 8601 date
	ValidUntil      *string            `json:"validUntil,omitempty"` // ISO 8601 date
	SentAt          *string            `json:"sentAt,omitempty"`
	ViewedAt        *string            `json:"viewedAt,omitempty"`
	DecidedAt       *string            `json:"decidedAt,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Version         int                `json:"version"`
	CreatedByID     string             `json:"createdById,omitempty"`
	CreatedByName   string             `json:"createdByName,omitempty"`
	Items           []QuotationItemDTO `json:"items"`
	CreatedAt       string             `json:"createdAt"` // ISO 8601
	UpdatedAt       string             `json:"updatedAt"` // ISO 8601
}

type QuotationItemDTO struct {
	ID                uuid.UUID  `json:"id"`
	QuotationID       uuid.UUID  `json:"quotationId"`
	ProductID         *uuid.UUID `json:"productId,omitempty"`
	ProductName       string     `json:"productName"`
	SKU               string     `json:"sku,omitempty"`
	Quantity          int        `json:"quantity"`
	UnitOfMeasure     string     `json:"unitOfMeasure"`
	UnitCost          float64    `json:"unitCost"`
	UnitPrice         float64    `json:"unitPrice"`
	UnitPriceOverride *float64   `json:"unitPriceOverride,omitempty"`
	EffectivePrice    float64    `json:"effectivePrice"`
	MarkupPercent     float64    `json:"markupPercent"`
	TariffPercent     float64    `json:"tariffPercent"`
	TariffAmount      float64    `json:"tariffAmount"`
	FreightAmount     float64    `json:"freightAmount"`
	LineTotal         float64    `json:"lineTotal"`
	SortOrder         int        `json:"sortOrder"`
}

type QuotationStatusHistoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	QuotationID   uuid.UUID        `json:"quotationId"`
	FromStatus    *QuotationStatus `json:"fromStatus,omitempty"`
	ToStatus      QuotationStatus  `json:"toStatus"`
	Notes         string           `json:"notes,omitempty"`
	ChangedByID   string           `json:"changedById"`
	ChangedByName string           `json:"changedByName,omitempty"`
	ChangedAt     string           `json:"changedAt"` // ISO 8601
}

// QuotationMutationDTO wraps a quotation response with a warning when
// the edit happened after the quotation was already exposed to the
// client.
type QuotationMutationDTO struct {
	Quotation *QuotationDTO `json:"quotation"`
	Warning   string        `json:"warning,omitempty"`
}

type ShareTokenDTO struct {
	ID          uuid.UUID `json:"id"`
	QuotationID uuid.UUID `json:"quotationId"`
	Token       string    `json:"token,omitempty"` // only returned at issuance
	ShareURL    string    `json:"shareUrl,omitempty"`
	ExpiresAt   string    `json:"expiresAt"`
	RevokedAt   *string   `json:"revokedAt,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

// PublicQuotationDTO is the trimmed view served on a share link. It
// omits costs, margins and internal audit fields.
type PublicQuotationDTO struct {
	QuotationNumber string                  `json:"quotationNumber"`
	Title           string                  `json:"title"`
	ClientName      string                  `json:"clientName"`
	Status          QuotationStatus         `json:"status"`
	Incoterm        Incoterm                `json:"incoterm"`
	Currency        string                  `json:"currency"`
	Total           float64                 `json:"total"`
	GrandTotal      float64                 `json:"grandTotal"`
	ValidUntil      *string                 `json:"validUntil,omitempty"`
	Items           []PublicQuotationItemDTO `json:"items"`
	IssuedAt        string                  `json:"issuedAt"`
}

type PublicQuotationItemDTO struct {
	ProductName   string  `json:"productName"`
	Quantity      int     `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	UnitPrice     float64 `json:"unitPrice"`
	LineTotal     float64 `json:"lineTotal"`
}

type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"targetType"`
	TargetID    uuid.UUID          `json:"targetId"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	OccurredAt  string             `json:"occurredAt"`
	CreatorID   string             `json:"creatorId,omitempty"`
	CreatorName string             `json:"creatorName,omitempty"`
}

// AuthUserDTO is the authenticated identity as seen by the client
type AuthUserDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// IssueTokenRequest mints a service token; admin only
type IssueTokenRequest struct {
	Subject string   `json:"subject" validate:"required,max=100"`
	Name    string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   string   `json:"email,omitempty" validate:"omitempty,email"`
	Roles   []string `json:"roles" validate:"required,min=1,dive,oneof=admin sales viewer service"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type CreateClientRequest struct {
	Name              string       `json:"name" validate:"required,max=200"`
	TaxID             string       `json:"taxId,omitempty" validate:"omitempty,max=30"`
	Email             string       `json:"email" validate:"required,email"`
	Phone             string       `json:"phone,omitempty"`
	Address           string       `json:"address,omitempty"`
	City              string       `json:"city,omitempty"`
	Country           string       `json:"country,omitempty"`
	ContactPerson     string       `json:"contactPerson,omitempty"`
	ContactEmail      string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	PreferredIncoterm Incoterm     `json:"preferredIncoterm,omitempty"`
	Status            ClientStatus `json:"status,omitempty"`
	Notes             string       `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name              *string       `json:"name,omitempty" validate:"omitempty,max=200"`
	TaxID             *string       `json:"taxId,omitempty" validate:"omitempty,max=30"`
	Email             *string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone             *string       `json:"phone,omitempty"`
	Address           *string       `json:"address,omitempty"`
	City              *string       `json:"city,omitempty"`
	Country           *string       `json:"country,omitempty"`
	ContactPerson     *string       `json:"contactPerson,omitempty"`
	ContactEmail      *string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	PreferredIncoterm *Incoterm     `json:"preferredIncoterm,omitempty"`
	Status            *ClientStatus `json:"status,omitempty"`
	Notes             *string       `json:"notes,omitempty"`
}

type CreateSupplierRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Country       string  `json:"country,omitempty"`
	City          string  `json:"city,omitempty"`
	Email         string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string  `json:"phone,omitempty"`
	ContactPerson string  `json:"contactPerson,omitempty"`
	Website       string  `json:"website,omitempty" validate:"omitempty,url"`
	LeadTimeDays  int     `json:"leadTimeDays,omitempty" validate:"omitempty,min=0"`
	Rating        float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
	Notes         string  `json:"notes,omitempty"`
}

type UpdateSupplierRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Country       *string  `json:"country,omitempty"`
	City          *string  `json:"city,omitempty"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty"`
	ContactPerson *string  `json:"contactPerson,omitempty"`
	Website       *string  `json:"website,omitempty" validate:"omitempty,url"`
	LeadTimeDays  *int     `json:"leadTimeDays,omitempty" validate:"omitempty,min=0"`
	Rating        *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
	IsActive      *bool    `json:"isActive,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type CreateProductRequest struct {
	SKU           string     `json:"sku,omitempty" validate:"omitempty,max=50"`
	Name          string     `json:"name" validate:"required,max=200"`
	Description   string     `json:"description,omitempty"`
	SupplierID    *uuid.UUID `json:"supplierId,omitempty"`
	HSCode        string     `json:"hsCode,omitempty" validate:"omitempty,max=20"`
	HSDutyPercent float64    `json:"hsDutyPercent,omitempty" validate:"omitempty,min=0,max=100"`
	UnitOfMeasure string     `json:"unitOfMeasure,omitempty"`
	UnitCost      float64    `json:"unitCost,omitempty" validate:"omitempty,min=0"`
	UnitPrice     float64    `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	Currency      string     `json:"currency,omitempty" validate:"omitempty,len=3"`
}

type UpdateProductRequest struct {
	SKU           *string    `json:"sku,omitempty" validate:"omitempty,max=50"`
	Name          *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string    `json:"description,omitempty"`
	SupplierID    *uuid.UUID `json:"supplierId,omitempty"`
	HSCode        *string    `json:"hsCode,omitempty" validate:"omitempty,max=20"`
	HSDutyPercent *float64   `json:"hsDutyPercent,omitempty" validate:"omitempty,min=0,max=100"`
	UnitOfMeasure *string    `json:"unitOfMeasure,omitempty"`
	UnitCost      *float64   `json:"unitCost,omitempty" validate:"omitempty,min=0"`
	UnitPrice     *float64   `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	Currency      *string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	IsActive      *bool      `json:"isActive,omitempty"`
}

type CreateQuotationRequest struct {
	Title           string                       `json:"title" validate:"required,max=200"`
	ClientID        uuid.UUID                    `json:"clientId" validate:"required"`
	Incoterm        Incoterm                     `json:"incoterm,omitempty"`
	Currency        string                       `json:"currency,omitempty" validate:"omitempty,len=3"`
	PortOfEntry     string                       `json:"portOfEntry,omitempty" validate:"omitempty,max=100"`
	FreightCost     float64                      `json:"freightCost,omitempty" validate:"omitempty,min=0"`
	InsuranceCost   float64                      `json:"insuranceCost,omitempty" validate:"omitempty,min=0"`
	InspectionCost  float64                      `json:"inspectionCost,omitempty" validate:"omitempty,min=0"`
	OtherCosts      float64                      `json:"otherCosts,omitempty" validate:"omitempty,min=0"`
	FreightNationalCost float64                  `json:"freightNationalCost,omitempty" validate:"omitempty,min=0"`
	NationalizationCost float64                  `json:"nationalizationCost,omitempty" validate:"omitempty,min=0"`
	TariffPercent   float64                      `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountPercent float64                      `json:"discountPercent,omitempty" validate:"omitempty,min=0,max=100"`
	MarginPercent   *float64                     `json:"marginPercent,omitempty" validate:"omitempty,max=1000"`
	ExchangeRate    *float64                     `json:"exchangeRate,omitempty" validate:"omitempty,gt=0"`
	ValidUntil      *time.Time                   `json:"validUntil,omitempty"`
	Notes           string                       `json:"notes,omitempty"`
	Items           []CreateQuotationItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

type UpdateQuotationRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Incoterm        *Incoterm  `json:"incoterm,omitempty"`
	Currency        *string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	PortOfEntry     *string    `json:"portOfEntry,omitempty" validate:"omitempty,max=100"`
	FreightCost     *float64   `json:"freightCost,omitempty" validate:"omitempty,min=0"`
	InsuranceCost   *float64   `json:"insuranceCost,omitempty" validate:"omitempty,min=0"`
	InspectionCost  *float64   `json:"inspectionCost,omitempty" validate:"omitempty,min=0"`
	OtherCosts      *float64   `json:"otherCosts,omitempty" validate:"omitempty,min=0"`
	FreightNationalCost *float64 `json:"freightNationalCost,omitempty" validate:"omitempty,min=0"`
	NationalizationCost *float64 `json:"nationalizationCost,omitempty" validate:"omitempty,min=0"`
	TariffPercent   *float64   `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountPercent *float64   `json:"discountPercent,omitempty" validate:"omitempty,min=0,max=100"`
	MarginPercent   *float64   `json:"marginPercent,omitempty" validate:"omitempty,max=1000"`
	ExchangeRate    *float64   `json:"exchangeRate,omitempty" validate:"omitempty,gt=0"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	Notes           *string    `json:"notes,omitempty"`

	// Version guards against lost updates. Zero means skip the check.
	Version int `json:"version,omitempty" validate:"omitempty,min=1"`
}

type CreateQuotationItemRequest struct {
	ProductID         *uuid.UUID `json:"productId,omitempty"`
	ProductName       string     `json:"productName,omitempty" validate:"omitempty,max=200"`
	SKU               string     `json:"sku,omitempty" validate:"omitempty,max=50"`
	Quantity          int        `json:"quantity" validate:"required,min=1"`
	UnitOfMeasure     string     `json:"unitOfMeasure,omitempty"`
	UnitCost          *float64   `json:"unitCost,omitempty" validate:"omitempty,min=0"`
	UnitPrice         *float64   `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	UnitPriceOverride *float64   `json:"unitPriceOverride,omitempty" validate:"omitempty,min=0"`
	MarkupPercent     float64    `json:"markupPercent,omitempty" validate:"omitempty,min=0,max=1000"`
	TariffPercent     float64    `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	TariffAmount      float64    `json:"tariffAmount,omitempty" validate:"omitempty,min=0"`
	FreightAmount     float64    `json:"freightAmount,omitempty" validate:"omitempty,min=0"`
	SortOrder         int        `json:"sortOrder,omitempty"`
}

type UpdateQuotationItemRequest struct {
	ProductName       *string  `json:"productName,omitempty" validate:"omitempty,max=200"`
	Quantity          *int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitOfMeasure     *string  `json:"unitOfMeasure,omitempty"`
	UnitCost          *float64 `json:"unitCost,omitempty" validate:"omitempty,min=0"`
	UnitPrice         *float64 `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	UnitPriceOverride *float64 `json:"unitPriceOverride,omitempty" validate:"omitempty,min=0"`
	ClearOverride     bool     `json:"clearOverride,omitempty"`
	MarkupPercent     *float64 `json:"markupPercent,omitempty" validate:"omitempty,min=0,max=1000"`
	TariffPercent     *float64 `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	TariffAmount      *float64 `json:"tariffAmount,omitempty" validate:"omitempty,min=0"`
	FreightAmount     *float64 `json:"freightAmount,omitempty" validate:"omitempty,min=0"`
	SortOrder         *int     `json:"sortOrder,omitempty"`
}

// UpdateQuotationStatusRequest drives an explicit lifecycle transition
type UpdateQuotationStatusRequest struct {
	Status  QuotationStatus `json:"status" validate:"required"`
	Notes   string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Version int             `json:"version,omitempty" validate:"omitempty,min=1"`
}

// SendQuotationRequest contains options when sending a quotation to
// the client
type SendQuotationRequest struct {
	RecipientEmail string `json:"recipientEmail,omitempty" validate:"omitempty,email"`
	Message        string `json:"message,omitempty" validate:"omitempty,max=2000"`
	ValidityDays   int    `json:"validityDays,omitempty" validate:"omitempty,min=1,max=365"`
	Version        int    `json:"version,omitempty" validate:"omitempty,min=1"`
}

// RejectQuotationRequest contains the reason for rejecting a quotation
type RejectQuotationRequest struct {
	Reason  string `json:"reason,omitempty" validate:"omitempty,max=2000"`
	Version int    `json:"version,omitempty" validate:"omitempty,min=1"`
}

// ShareQuotationRequest contains options for issuing a share link
type ShareQuotationRequest struct {
	ExpiresInDays int `json:"expiresInDays,omitempty" validate:"omitempty,min=1,max=90"`
}

// DuplicateQuotationRequest contains options for duplicating a
// quotation into a fresh draft
type DuplicateQuotationRequest struct {
	Title     string     `json:"title,omitempty" validate:"omitempty,max=200"`
	ClientID  *uuid.UUID `json:"clientId,omitempty"`
	CopyNotes bool       `json:"copyNotes,omitempty"`
}

// CalculateRequest prices an ad-hoc set of lines without persisting
// anything. Used by the interactive calculator view.
type CalculateRequest struct {
	Lines              []CalculateLineRequest `json:"lines" validate:"required,min=1,dive"`
	FreightCost        float64                `json:"freightCost,omitempty" validate:"omitempty,min=0"`
	InspectionCost     float64                `json:"inspectionCost,omitempty" validate:"omitempty,min=0"`
	InsuranceCost      float64                `json:"insuranceCost,omitempty" validate:"omitempty,min=0"`
	TariffPercent      float64                `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	ExchangeRate       *float64               `json:"exchangeRate,omitempty" validate:"omitempty,gt=0"`
	FreightNationalCOP float64                `json:"freightNationalCop,omitempty" validate:"omitempty,min=0"`
	NationalizationCOP float64                `json:"nationalizationCop,omitempty" validate:"omitempty,min=0"`
	MarginPercent      float64                `json:"marginPercent,omitempty" validate:"omitempty,max=1000"`
}

// CalculateQuotationRequest previews a stored quotation's pricing with
// optional overrides. Nothing is persisted.
type CalculateQuotationRequest struct {
	ExchangeRate  *float64 `json:"exchangeRate,omitempty" validate:"omitempty,gt=0"`
	MarginPercent *float64 `json:"marginPercent,omitempty" validate:"omitempty,max=1000"`
}

type CalculateLineRequest struct {
	Quantity          int      `json:"quantity" validate:"required,min=1"`
	UnitPrice         float64  `json:"unitPrice" validate:"min=0"`
	UnitPriceOverride *float64 `json:"unitPriceOverride,omitempty" validate:"omitempty,min=0"`
	TariffPercent     float64  `json:"tariffPercent,omitempty" validate:"omitempty,min=0,max=100"`
	TariffAmount      float64  `json:"tariffAmount,omitempty" validate:"omitempty,min=0"`
	FreightAmount     float64  `json:"freightAmount,omitempty" validate:"omitempty,min=0"`
}

// UpdateSettingRequest sets one pricing setting value
type UpdateSettingRequest struct {
	Value       string `json:"value" validate:"required,max=500"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}
