package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database does not
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Incoterm represents a standardized trade term governing which costs
// are included in the base price
type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermCFR Incoterm = "CFR"
	IncotermDDP Incoterm = "DDP"
)

// IsValid checks if the Incoterm is a valid enum value
func (i Incoterm) IsValid() bool {
	switch i {
	case IncotermEXW, IncotermFOB, IncotermCIF, IncotermCFR, IncotermDDP:
		return true
	}
	return false
}

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusLead     ClientStatus = "lead"
)

// Client represents a buyer organization receiving quotations
type Client struct {
	BaseModel
	Name              string       `gorm:"type:varchar(200);not null;index"`
	TaxID             string       `gorm:"type:varchar(30);unique;index;column:tax_id"`
	Email             string       `gorm:"type:varchar(255);not null"`
	Phone             string       `gorm:"type:varchar(50)"`
	Address           string       `gorm:"type:varchar(500)"`
	City              string       `gorm:"type:varchar(100)"`
	Country           string       `gorm:"type:varchar(100);not null;default:'Colombia'"`
	ContactPerson     string       `gorm:"type:varchar(200);column:contact_person"`
	ContactEmail      string       `gorm:"type:varchar(255);column:contact_email"`
	PreferredIncoterm Incoterm     `gorm:"type:varchar(10);not null;default:'CIF';column:preferred_incoterm"`
	Status            ClientStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	Notes             string       `gorm:"type:text"`
	Quotations        []Quotation  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// Supplier represents a sourcing counterpart for products
type Supplier struct {
	BaseModel
	Name          string  `gorm:"type:varchar(200);not null;index"`
	Country       string  `gorm:"type:varchar(100);not null;default:'China'"`
	City          string  `gorm:"type:varchar(100)"`
	Email         string  `gorm:"type:varchar(255)"`
	Phone         string  `gorm:"type:varchar(50)"`
	ContactPerson string  `gorm:"type:varchar(200);column:contact_person"`
	Website       string  `gorm:"type:varchar(500)"`
	LeadTimeDays  int     `gorm:"not null;default:0;column:lead_time_days"`
	Rating        float64 `gorm:"type:decimal(3,1);not null;default:0"`
	IsActive      bool    `gorm:"not null;default:true;column:is_active"`
	Notes         string  `gorm:"type:text"`
}

// Product represents catalog reference data consumed by the pricing engine.
// Unit cost/price here are defaults; quotation items snapshot them so
// catalog edits never retroactively change historical quotations.
type Product struct {
	BaseModel
	SKU           string     `gorm:"type:varchar(50);unique;index;column:sku"`
	Name          string     `gorm:"type:varchar(200);not null;index"`
	Description   string     `gorm:"type:text"`
	SupplierID    *uuid.UUID `gorm:"type:uuid;index;column:supplier_id"`
	Supplier      *Supplier  `gorm:"foreignKey:SupplierID"`
	HSCode        string     `gorm:"type:varchar(20);column:hs_code"`
	HSDutyPercent float64    `gorm:"type:decimal(5,2);not null;default:0;column:hs_duty_percent"`
	UnitOfMeasure string     `gorm:"type:varchar(50);not null;default:'unit';column:unit_of_measure"`
	UnitCost      float64    `gorm:"type:decimal(15,2);not null;default:0;column:unit_cost"`
	UnitPrice     float64    `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	Currency      string     `gorm:"type:varchar(3);not null;default:'USD'"`
	IsActive      bool       `gorm:"not null;default:true;column:is_active"`
}

// Quotation is the aggregate root of the pricing and lifecycle engine.
// Derived totals are computed by the engine, never hand-edited.
type Quotation struct {
	BaseModel
	QuotationNumber string          `gorm:"type:varchar(50);unique;index;column:quotation_number"`
	Title           string          `gorm:"type:varchar(200);not null"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index;column:client_id"`
	Client          *Client         `gorm:"foreignKey:ClientID"`
	ClientName      string          `gorm:"type:varchar(200);column:client_name"`
	Status          QuotationStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Incoterm        Incoterm        `gorm:"type:varchar(10);not null;default:'CIF'"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'USD'"`
	PortOfEntry     string          `gorm:"type:varchar(100);column:port_of_entry"`
	FreightCost     float64         `gorm:"type:decimal(15,2);not null;default:0;column:freight_cost"`
	InsuranceCost   float64         `gorm:"type:decimal(15,2);not null;default:0;column:insurance_cost"`
	InspectionCost  float64         `gorm:"type:decimal(15,2);not null;default:0;column:inspection_cost"`
	OtherCosts      float64         `gorm:"type:decimal(15,2);not null;default:0;column:other_costs"`

	// National leg costs in the destination currency. Entered manually
	// or refreshed from the freight rates warehouse when available.
	FreightNationalCost float64 `gorm:"type:decimal(15,2);not null;default:0;column:freight_national_cost"`
	NationalizationCost float64 `gorm:"type:decimal(15,2);not null;default:0;column:nationalization_cost"`
	TariffPercent   float64         `gorm:"type:decimal(5,2);not null;default:0;column:tariff_percent"`
	DiscountPercent float64         `gorm:"type:decimal(5,2);not null;default:0;column:discount_percent"`
	MarginPercent   float64         `gorm:"type:decimal(5,2);not null;default:0;column:margin_percent"`
	ExchangeRate    float64         `gorm:"type:decimal(15,6);not null;default:0;column:exchange_rate"`
	ValidFrom       *time.Time      `gorm:"type:date;column:valid_from"`
	ValidUntil      *time.Time      `gorm:"type:date;column:valid_until"`
	SentAt          *time.Time      `gorm:"column:sent_at"`
	ViewedAt        *time.Time      `gorm:"column:viewed_at"`
	DecidedAt       *time.Time      `gorm:"column:decided_at"`

	// Engine-computed totals in the quote currency, persisted on save
	Subtotal       float64 `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount float64 `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	Total          float64 `gorm:"type:decimal(15,2);not null;default:0"`
	GrandTotal     float64 `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`

	Notes   string `gorm:"type:text"`
	Version int    `gorm:"not null;default:1"`

	CreatedByID   string `gorm:"type:varchar(100);column:created_by_id"`
	CreatedByName string `gorm:"type:varchar(200);column:created_by_name"`
	UpdatedByID   string `gorm:"type:varchar(100);column:updated_by_id"`
	UpdatedByName string `gorm:"type:varchar(200);column:updated_by_name"`

	Items   []QuotationItem          `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	History []QuotationStatusHistory `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItem is a line item owned exclusively by one quotation.
// Product attributes are snapshotted at insertion time.
type QuotationItem struct {
	BaseModel
	QuotationID       uuid.UUID  `gorm:"type:uuid;not null;index;column:quotation_id"`
	Quotation         *Quotation `gorm:"foreignKey:QuotationID"`
	ProductID         *uuid.UUID `gorm:"type:uuid;index;column:product_id"`
	ProductName       string     `gorm:"type:varchar(200);not null;column:product_name"`
	SKU               string     `gorm:"type:varchar(50);column:sku"`
	Quantity          int        `gorm:"not null;default:1"`
	UnitOfMeasure     string     `gorm:"type:varchar(50);not null;default:'unit';column:unit_of_measure"`
	UnitCost          float64    `gorm:"type:decimal(15,2);not null;default:0;column:unit_cost"`
	UnitPrice         float64    `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	UnitPriceOverride *float64   `gorm:"type:decimal(15,2);column:unit_price_override"`
	MarkupPercent     float64    `gorm:"type:decimal(5,2);not null;default:0;column:markup_percent"`
	TariffPercent     float64    `gorm:"type:decimal(5,2);not null;default:0;column:tariff_percent"`
	TariffAmount      float64    `gorm:"type:decimal(15,2);not null;default:0;column:tariff_amount"`
	FreightAmount     float64    `gorm:"type:decimal(15,2);not null;default:0;column:freight_amount"`
	LineTotal         float64    `gorm:"type:decimal(15,2);not null;default:0;column:line_total"`
	SortOrder         int        `gorm:"not null;default:0;column:sort_order"`
}

// EffectiveUnitPrice returns the override when present, the listed
// price otherwise. The listed price and cost are retained unmodified
// for margin reporting.
func (i *QuotationItem) EffectiveUnitPrice() float64 {
	if i.UnitPriceOverride != nil {
		return *i.UnitPriceOverride
	}
	return i.UnitPrice
}

// QuotationStatusHistory is an append-only record of a status
// transition. Rows are never edited or deleted.
type QuotationStatusHistory struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	QuotationID   uuid.UUID        `gorm:"type:uuid;not null;index;column:quotation_id"`
	Quotation     *Quotation       `gorm:"foreignKey:QuotationID"`
	FromStatus    *QuotationStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus      QuotationStatus  `gorm:"type:varchar(50);not null;column:to_status"`
	Notes         string           `gorm:"type:text"`
	ChangedByID   string           `gorm:"type:varchar(100);not null;column:changed_by_id"`
	ChangedByName string           `gorm:"type:varchar(200);column:changed_by_name"`
	ChangedAt     time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (QuotationStatusHistory) TableName() string {
	return "quotation_status_history"
}

// BeforeCreate assigns a UUID when the database does not
func (h *QuotationStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// ShareToken tracks an issued public share link so it can be revoked.
// The token itself is a signed JWT; this row is its revocation handle.
type ShareToken struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	QuotationID uuid.UUID  `gorm:"type:uuid;not null;index;column:quotation_id"`
	Quotation   *Quotation `gorm:"foreignKey:QuotationID"`
	TokenID     string     `gorm:"type:varchar(100);not null;unique;column:token_id"`
	IssuedByID  string     `gorm:"type:varchar(100);column:issued_by_id"`
	ExpiresAt   time.Time  `gorm:"not null;column:expires_at"`
	RevokedAt   *time.Time `gorm:"column:revoked_at"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database does not
func (s *ShareToken) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PricingSetting is process-wide keyed configuration read by the
// engine (default margin, default exchange rate, ...). Mutated only
// through the administrative endpoints.
type PricingSetting struct {
	Key         string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value       string    `gorm:"type:varchar(500);not null" json:"value"`
	Description string    `gorm:"type:varchar(500)" json:"description,omitempty"`
	UpdatedByID string    `gorm:"type:varchar(100);column:updated_by_id" json:"updatedById,omitempty"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// Well-known pricing setting keys
const (
	SettingDefaultMarginPercent = "default_margin_percent"
	SettingDefaultExchangeRate  = "default_exchange_rate"
	SettingQuoteValidityDays    = "quote_validity_days"
)

// NumberSequence stores the last issued sequence per year for
// quotation numbering
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Year         int       `gorm:"not null;uniqueIndex"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database does not
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetQuotation ActivityTargetType = "Quotation"
	ActivityTargetClient    ActivityTargetType = "Client"
	ActivityTargetProduct   ActivityTargetType = "Product"
	ActivityTargetSupplier  ActivityTargetType = "Supplier"
)

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:varchar(2000)"`
	OccurredAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	CreatorID   string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name"`
}

// User represents an authenticated operator of the system
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
