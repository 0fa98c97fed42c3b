package mapper

import (
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client, activeQuotations int) domain.ClientDTO {
	return domain.ClientDTO{
		ID:                client.ID,
		Name:              client.Name,
		TaxID:             client.TaxID,
		Email:             client.Email,
		Phone:             client.Phone,
		Address:           client.Address,
		City:              client.City,
		Country:           client.Country,
		ContactPerson:     client.ContactPerson,
		ContactEmail:      client.ContactEmail,
		PreferredIncoterm: client.PreferredIncoterm,
		Status:            client.Status,
		Notes:             client.Notes,
		ActiveQuotations:  activeQuotations,
		CreatedAt:         client.CreatedAt.Format(timestampLayout),
		UpdatedAt:         client.UpdatedAt.Format(timestampLayout),
	}
}

// ToSupplierDTO converts Supplier to SupplierDTO
func ToSupplierDTO(supplier *domain.Supplier) domain.SupplierDTO {
	return domain.SupplierDTO{
		ID:            supplier.ID,
		Name:          supplier.Name,
		Country:       supplier.Country,
		City:          supplier.City,
		Email:         supplier.Email,
		Phone:         supplier.Phone,
		ContactPerson: supplier.ContactPerson,
		Website:       supplier.Website,
		LeadTimeDays:  supplier.LeadTimeDays,
		Rating:        supplier.Rating,
		IsActive:      supplier.IsActive,
		Notes:         supplier.Notes,
		CreatedAt:     supplier.CreatedAt.Format(timestampLayout),
		UpdatedAt:     supplier.UpdatedAt.Format(timestampLayout),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	dto := domain.ProductDTO{
		ID:            product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		Description:   product.Description,
		SupplierID:    product.SupplierID,
		HSCode:        product.HSCode,
		HSDutyPercent: product.HSDutyPercent,
		UnitOfMeasure: product.UnitOfMeasure,
		UnitCost:      product.UnitCost,
		UnitPrice:     product.UnitPrice,
		Currency:      product.Currency,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt.Format(timestampLayout),
		UpdatedAt:     product.UpdatedAt.Format(timestampLayout),
	}
	if product.Supplier != nil {
		dto.SupplierName = product.Supplier.Name
	}
	return dto
}

// ToQuotationDTO converts Quotation to QuotationDTO
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	items := make([]domain.QuotationItemDTO, len(quotation.Items))
	for i, item := range quotation.Items {
		items[i] = ToQuotationItemDTO(&item)
	}

	return domain.QuotationDTO{
		ID:              quotation.ID,
		QuotationNumber: quotation.QuotationNumber,
		Title:           quotation.Title,
		ClientID:        quotation.ClientID,
		ClientName:      quotation.ClientName,
		Status:          quotation.Status,
		Incoterm:        quotation.Incoterm,
		Currency:        quotation.Currency,
		PortOfEntry:     quotation.PortOfEntry,
		FreightCost:     quotation.FreightCost,
		InsuranceCost:   quotation.InsuranceCost,
		InspectionCost:  quotation.InspectionCost,
		OtherCosts:      quotation.OtherCosts,
		FreightNationalCost: quotation.FreightNationalCost,
		NationalizationCost: quotation.NationalizationCost,
		TariffPercent:   quotation.TariffPercent,
		DiscountPercent: quotation.DiscountPercent,
		MarginPercent:   quotation.MarginPercent,
		ExchangeRate:    quotation.ExchangeRate,
		Subtotal:        quotation.Subtotal,
		DiscountAmount:  quotation.DiscountAmount,
		Total:           quotation.Total,
		GrandTotal:      quotation.GrandTotal,
		ValidFrom:       formatTimePtr(quotation.ValidFrom),
		ValidUntil:      formatTimePtr(quotation.ValidUntil),
		SentAt:          formatTimePtr(quotation.SentAt),
		ViewedAt:        formatTimePtr(quotation.ViewedAt),
		DecidedAt:       formatTimePtr(quotation.DecidedAt),
		Notes:           quotation.Notes,
		Version:         quotation.Version,
		CreatedByID:     quotation.CreatedByID,
		CreatedByName:   quotation.CreatedByName,
		Items:           items,
		CreatedAt:       quotation.CreatedAt.Format(timestampLayout),
		UpdatedAt:       quotation.UpdatedAt.Format(timestampLayout),
	}
}

// ToQuotationItemDTO converts QuotationItem to QuotationItemDTO
func ToQuotationItemDTO(item *domain.QuotationItem) domain.QuotationItemDTO {
	return domain.QuotationItemDTO{
		ID:                item.ID,
		QuotationID:       item.QuotationID,
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		SKU:               item.SKU,
		Quantity:          item.Quantity,
		UnitOfMeasure:     item.UnitOfMeasure,
		UnitCost:          item.UnitCost,
		UnitPrice:         item.UnitPrice,
		UnitPriceOverride: item.UnitPriceOverride,
		EffectivePrice:    item.EffectiveUnitPrice(),
		MarkupPercent:     item.MarkupPercent,
		TariffPercent:     item.TariffPercent,
		TariffAmount:      item.TariffAmount,
		FreightAmount:     item.FreightAmount,
		LineTotal:         item.LineTotal,
		SortOrder:         item.SortOrder,
	}
}

// ToStatusHistoryDTO converts a history entry to its DTO
func ToStatusHistoryDTO(entry *domain.QuotationStatusHistory) domain.QuotationStatusHistoryDTO {
	return domain.QuotationStatusHistoryDTO{
		ID:            entry.ID,
		QuotationID:   entry.QuotationID,
		FromStatus:    entry.FromStatus,
		ToStatus:      entry.ToStatus,
		Notes:         entry.Notes,
		ChangedByID:   entry.ChangedByID,
		ChangedByName: entry.ChangedByName,
		ChangedAt:     entry.ChangedAt.Format(timestampLayout),
	}
}

// ToShareTokenDTO converts ShareToken to ShareTokenDTO. The signed
// token string and share URL are only known at issuance and must be
// filled in by the caller.
func ToShareTokenDTO(token *domain.ShareToken) domain.ShareTokenDTO {
	return domain.ShareTokenDTO{
		ID:          token.ID,
		QuotationID: token.QuotationID,
		ExpiresAt:   token.ExpiresAt.Format(timestampLayout),
		RevokedAt:   formatTimePtr(token.RevokedAt),
		CreatedAt:   token.CreatedAt.Format(timestampLayout),
	}
}

// ToPublicQuotationDTO builds the trimmed client-facing view of a
// quotation. Internal costs, margins and audit fields are omitted.
func ToPublicQuotationDTO(quotation *domain.Quotation) domain.PublicQuotationDTO {
	items := make([]domain.PublicQuotationItemDTO, len(quotation.Items))
	for i, item := range quotation.Items {
		items[i] = domain.PublicQuotationItemDTO{
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			UnitOfMeasure: item.UnitOfMeasure,
			UnitPrice:     item.EffectiveUnitPrice(),
			LineTotal:     item.LineTotal,
		}
	}

	issuedAt := quotation.CreatedAt
	if quotation.SentAt != nil {
		issuedAt = *quotation.SentAt
	}

	return domain.PublicQuotationDTO{
		QuotationNumber: quotation.QuotationNumber,
		Title:           quotation.Title,
		ClientName:      quotation.ClientName,
		Status:          quotation.Status,
		Incoterm:        quotation.Incoterm,
		Currency:        quotation.Currency,
		Total:           quotation.Total,
		GrandTotal:      quotation.GrandTotal,
		ValidUntil:      formatTimePtr(quotation.ValidUntil),
		Items:           items,
		IssuedAt:        issuedAt.Format(timestampLayout),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		TargetType:  activity.TargetType,
		TargetID:    activity.TargetID,
		Title:       activity.Title,
		Body:        activity.Body,
		OccurredAt:  activity.OccurredAt.Format(timestampLayout),
		CreatorID:   activity.CreatorID,
		CreatorName: activity.CreatorName,
	}
}

// FormatError wraps an error with entity and operation context
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("%s %s failed: %w", operation, entity, err)
}
