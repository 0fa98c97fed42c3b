package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// buildItem assembles a quotation item from a request, snapshotting
// catalog data when a product reference is present. Snapshots keep
// historical quotations stable when the catalog changes later.
func (s *QuotationService) buildItem(ctx context.Context, req *domain.CreateQuotationItemRequest, position int) (*domain.QuotationItem, error) {
	item := &domain.QuotationItem{
		ProductName:       req.ProductName,
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		UnitOfMeasure:     req.UnitOfMeasure,
		MarkupPercent:     req.MarkupPercent,
		TariffPercent:     req.TariffPercent,
		TariffAmount:      req.TariffAmount,
		FreightAmount:     req.FreightAmount,
		UnitPriceOverride: req.UnitPriceOverride,
		SortOrder:         req.SortOrder,
	}
	if item.SortOrder == 0 {
		item.SortOrder = position
	}

	if req.ProductID != nil {
		product, err := s.productRepo.GetByID(ctx, *req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		item.ProductID = &product.ID
		if item.ProductName == "" {
			item.ProductName = product.Name
		}
		if item.SKU == "" {
			item.SKU = product.SKU
		}
		if item.UnitOfMeasure == "" {
			item.UnitOfMeasure = product.UnitOfMeasure
		}
		item.UnitCost = product.UnitCost
		item.UnitPrice = product.UnitPrice
		if item.TariffPercent == 0 && req.TariffAmount == 0 {
			item.TariffPercent = product.HSDutyPercent
		}
	}

	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}

	if item.ProductName == "" {
		return nil, fmt.Errorf("%w: item needs a product reference or a product name", ErrInvalidInput)
	}
	if item.UnitOfMeasure == "" {
		item.UnitOfMeasure = "unit"
	}

	lineTotal, err := itemLineTotal(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	item.LineTotal = lineTotal
	return item, nil
}

// AddItem appends a line to a quotation. The line is priced on its
// own; the quotation's saved totals stay as they are until an
// explicit update.
func (s *QuotationService) AddItem(ctx context.Context, quotationID uuid.UUID, req *domain.CreateQuotationItemRequest) (*domain.QuotationMutationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.AllowsItemMutation() {
		return nil, ErrQuotationLocked
	}

	item, err := s.buildItem(ctx, req, len(quotation.Items))
	if err != nil {
		return nil, err
	}
	item.QuotationID = quotation.ID

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return s.saveItemMutation(ctx, quotationID, quotation.Version, "Item added",
		fmt.Sprintf("Line '%s' x%d added", item.ProductName, item.Quantity))
}

// UpdateItem edits a line and reprices it
func (s *QuotationService) UpdateItem(ctx context.Context, quotationID, itemID uuid.UUID, req *domain.UpdateQuotationItemRequest) (*domain.QuotationMutationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.AllowsItemMutation() {
		return nil, ErrQuotationLocked
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item.QuotationID != quotationID {
		return nil, ErrItemNotFound
	}

	if req.ProductName != nil {
		item.ProductName = *req.ProductName
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitOfMeasure != nil {
		item.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.ClearOverride {
		item.UnitPriceOverride = nil
	} else if req.UnitPriceOverride != nil {
		item.UnitPriceOverride = req.UnitPriceOverride
	}
	if req.MarkupPercent != nil {
		item.MarkupPercent = *req.MarkupPercent
	}
	if req.TariffPercent != nil {
		item.TariffPercent = *req.TariffPercent
	}
	if req.TariffAmount != nil {
		item.TariffAmount = *req.TariffAmount
	}
	if req.FreightAmount != nil {
		item.FreightAmount = *req.FreightAmount
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	lineTotal, err := itemLineTotal(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	item.LineTotal = lineTotal

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return s.saveItemMutation(ctx, quotationID, quotation.Version, "Item updated",
		fmt.Sprintf("Line '%s' updated", item.ProductName))
}

// RemoveItem deletes a line
func (s *QuotationService) RemoveItem(ctx context.Context, quotationID, itemID uuid.UUID) (*domain.QuotationMutationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.AllowsItemMutation() {
		return nil, ErrQuotationLocked
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item.QuotationID != quotationID {
		return nil, ErrItemNotFound
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	return s.saveItemMutation(ctx, quotationID, quotation.Version, "Item removed",
		fmt.Sprintf("Line '%s' removed", item.ProductName))
}

// saveItemMutation bumps the quotation version under the optimistic
// guard after a line change and records the activity. Persisted
// aggregate totals are left exactly as saved; they refresh only when
// the quotation itself is explicitly updated.
func (s *QuotationService) saveItemMutation(ctx context.Context, quotationID uuid.UUID, expectedVersion int, activityTitle, activityBody string) (*domain.QuotationMutationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	if err := s.saveWithVersion(ctx, quotation, expectedVersion); err != nil {
		return nil, err
	}

	quotation, err = s.quotationRepo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logActivity(ctx, quotationID, activityTitle, activityBody)
	return s.mutationResult(quotation), nil
}
