package repository

import (
	"context"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuotationItemRepository struct {
	db *gorm.DB
}

func NewQuotationItemRepository(db *gorm.DB) *QuotationItemRepository {
	return &QuotationItemRepository{db: db}
}

func (r *QuotationItemRepository) Create(ctx context.Context, item *domain.QuotationItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *QuotationItemRepository) CreateBatch(ctx context.Context, items []domain.QuotationItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *QuotationItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationItem, error) {
	var item domain.QuotationItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *QuotationItemRepository) Update(ctx context.Context, item *domain.QuotationItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *QuotationItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.QuotationItem{}, "id = ?", id).Error
}

func (r *QuotationItemRepository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]domain.QuotationItem, error) {
	var items []domain.QuotationItem
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *QuotationItemRepository) DeleteByQuotation(ctx context.Context, quotationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.QuotationItem{}, "quotation_id = ?", quotationID).Error
}

func (r *QuotationItemRepository) CountByQuotation(ctx context.Context, quotationID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.QuotationItem{}).
		Where("quotation_id = ?", quotationID).
		Count(&count).Error
	return int(count), err
}
