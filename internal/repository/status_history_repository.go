package repository

import (
	"context"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusHistoryRepository handles database operations for the
// append-only quotation status history. Rows are only ever inserted.
type StatusHistoryRepository struct {
	db *gorm.DB
}

func NewStatusHistoryRepository(db *gorm.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

func (r *StatusHistoryRepository) Create(ctx context.Context, entry *domain.QuotationStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByQuotation returns the transition log in chronological order
func (r *StatusHistoryRepository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]domain.QuotationStatusHistory, error) {
	var entries []domain.QuotationStatusHistory
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("changed_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// Latest returns the most recent transition for a quotation, or nil
// when none exists
func (r *StatusHistoryRepository) Latest(ctx context.Context, quotationID uuid.UUID) (*domain.QuotationStatusHistory, error) {
	var entry domain.QuotationStatusHistory
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("changed_at DESC, id DESC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
