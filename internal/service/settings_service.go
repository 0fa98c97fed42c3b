package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettingsService manages the pricing defaults applied when a
// quotation does not carry its own value: margin percent, exchange
// rate and validity days.
type SettingsService struct {
	settingRepo *repository.PricingSettingRepository
	logger      *zap.Logger
}

func NewSettingsService(settingRepo *repository.PricingSettingRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// numericSettings must parse as numbers; anything else is rejected at
// write time rather than discovered during a calculation.
var numericSettings = map[string]bool{
	domain.SettingDefaultMarginPercent: true,
	domain.SettingDefaultExchangeRate:  true,
	domain.SettingQuoteValidityDays:    true,
}

func (s *SettingsService) Get(ctx context.Context, key string) (*domain.PricingSetting, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: setting %q", ErrInvalidInput, key)
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	if setting == nil {
		return nil, fmt.Errorf("%w: setting %q", ErrInvalidInput, key)
	}
	return setting, nil
}

func (s *SettingsService) List(ctx context.Context) ([]domain.PricingSetting, error) {
	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) Set(ctx context.Context, key string, req *domain.UpdateSettingRequest) (*domain.PricingSetting, error) {
	if numericSettings[key] {
		value, err := strconv.ParseFloat(req.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: setting %q needs a numeric value", ErrInvalidInput, key)
		}
		switch key {
		case domain.SettingDefaultExchangeRate:
			if value <= 0 {
				return nil, fmt.Errorf("%w: exchange rate must be positive", ErrInvalidInput)
			}
		case domain.SettingQuoteValidityDays:
			if value < 1 || value != float64(int(value)) {
				return nil, fmt.Errorf("%w: validity days must be a positive whole number", ErrInvalidInput)
			}
		}
	}

	setting := &domain.PricingSetting{
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedByID: auth.ActorID(ctx),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}

	s.logger.Info("pricing setting updated",
		zap.String("key", key),
		zap.String("updated_by", auth.ActorID(ctx)))
	return setting, nil
}

func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := s.settingRepo.Delete(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: setting %q", ErrInvalidInput, key)
		}
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	s.logger.Info("pricing setting deleted", zap.String("key", key))
	return nil
}
