package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an update guarded by a version
// check matched no row: the quotation was modified concurrently.
var ErrVersionConflict = errors.New("quotation version conflict")

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) GetByNumber(ctx context.Context, number string) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("quotation_number = ?", number).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Update saves the quotation without a version guard. Used for
// system-side mutations (lazy expiry, viewed stamping) that do not
// race with user edits on the same fields.
func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Omit("Items", "History", "Client").Save(quotation).Error
}

// UpdateWithVersion saves the quotation only if its stored version
// still equals expectedVersion, bumping the version on success.
// Returns ErrVersionConflict when another writer got there first.
func (r *QuotationRepository) UpdateWithVersion(ctx context.Context, quotation *domain.Quotation, expectedVersion int) error {
	updates := map[string]interface{}{
		"title":            quotation.Title,
		"client_id":        quotation.ClientID,
		"client_name":      quotation.ClientName,
		"status":           quotation.Status,
		"incoterm":         quotation.Incoterm,
		"currency":         quotation.Currency,
		"freight_cost":     quotation.FreightCost,
		"insurance_cost":   quotation.InsuranceCost,
		"inspection_cost":  quotation.InspectionCost,
		"other_costs":      quotation.OtherCosts,
		"tariff_percent":   quotation.TariffPercent,
		"discount_percent": quotation.DiscountPercent,
		"margin_percent":   quotation.MarginPercent,
		"exchange_rate":    quotation.ExchangeRate,
		"valid_from":       quotation.ValidFrom,
		"valid_until":      quotation.ValidUntil,
		"sent_at":          quotation.SentAt,
		"viewed_at":        quotation.ViewedAt,
		"decided_at":       quotation.DecidedAt,
		"subtotal":         quotation.Subtotal,
		"discount_amount":  quotation.DiscountAmount,
		"total":            quotation.Total,
		"grand_total":      quotation.GrandTotal,
		"notes":            quotation.Notes,
		"updated_by_id":    quotation.UpdatedByID,
		"updated_by_name":  quotation.UpdatedByName,
		"version":          expectedVersion + 1,
		"updated_at":       time.Now().UTC(),
	}

	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("id = ? AND version = ?", quotation.ID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	quotation.Version = expectedVersion + 1
	return nil
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quotation{}, "id = ?", id).Error
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).Preload("Client")

	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

func (r *QuotationRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("LOWER(title) LIKE ? OR LOWER(quotation_number) LIKE ? OR LOWER(client_name) LIKE ?",
			searchPattern, searchPattern, searchPattern).
		Limit(limit).
		Find(&quotations).Error
	return quotations, err
}

// ListExpirable returns quotations in a non-terminal status whose
// validity window has closed as of the given instant
func (r *QuotationRepository) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.QuotationStatus{
			domain.QuotationStatusDraft,
			domain.QuotationStatusSent,
			domain.QuotationStatusViewed,
			domain.QuotationStatusNegotiating,
		}).
		Where("valid_until IS NOT NULL AND valid_until < ?", asOf).
		Limit(limit).
		Find(&quotations).Error
	return quotations, err
}

func (r *QuotationRepository) CountByStatus(ctx context.Context, status domain.QuotationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountByClient counts every quotation owned by a client regardless
// of status. Used to block deleting clients with history.
func (r *QuotationRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

func (r *QuotationRepository) CountActiveByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("client_id = ?", clientID).
		Where("status IN ?", []domain.QuotationStatus{
			domain.QuotationStatusDraft,
			domain.QuotationStatusSent,
			domain.QuotationStatusViewed,
			domain.QuotationStatusNegotiating,
		}).
		Count(&count).Error
	return int(count), err
}
