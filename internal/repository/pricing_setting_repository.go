package repository

import (
	"context"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PricingSettingRepository handles database operations for keyed
// pricing settings
type PricingSettingRepository struct {
	db *gorm.DB
}

func NewPricingSettingRepository(db *gorm.DB) *PricingSettingRepository {
	return &PricingSettingRepository{db: db}
}

// Get returns the setting for a key, or nil when it is not set
func (r *PricingSettingRepository) Get(ctx context.Context, key string) (*domain.PricingSetting, error) {
	var setting domain.PricingSetting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert inserts or replaces the setting for a key
func (r *PricingSettingRepository) Upsert(ctx context.Context, setting *domain.PricingSetting) error {
	setting.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_by_id", "updated_at"}),
	}).Create(setting).Error
}

// List returns all settings ordered by key
func (r *PricingSettingRepository) List(ctx context.Context) ([]domain.PricingSetting, error) {
	var settings []domain.PricingSetting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}

// Delete removes a setting, reverting callers to the built-in default
func (r *PricingSettingRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&domain.PricingSetting{}, "key = ?", key).Error
}
