package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createSettingsService(db *gorm.DB) *service.SettingsService {
	return service.NewSettingsService(repository.NewPricingSettingRepository(db), zap.NewNop())
}

func TestSettingsService_SetAndGet(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	saved, err := svc.Set(ctx, domain.SettingDefaultMarginPercent, &domain.UpdateSettingRequest{
		Value:       "25",
		Description: "Standard margin for H2",
	})
	require.NoError(t, err)
	assert.Equal(t, "25", saved.Value)
	assert.Equal(t, "user-1", saved.UpdatedByID)

	got, err := svc.Get(ctx, domain.SettingDefaultMarginPercent)
	require.NoError(t, err)
	assert.Equal(t, "25", got.Value)
	assert.Equal(t, "Standard margin for H2", got.Description)

	// Setting the same key again replaces, it does not duplicate
	_, err = svc.Set(ctx, domain.SettingDefaultMarginPercent, &domain.UpdateSettingRequest{Value: "30"})
	require.NoError(t, err)

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "30", settings[0].Value)
}

func TestSettingsService_RejectsNonNumericValues(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	for _, key := range []string{
		domain.SettingDefaultMarginPercent,
		domain.SettingDefaultExchangeRate,
		domain.SettingQuoteValidityDays,
	} {
		_, err := svc.Set(ctx, key, &domain.UpdateSettingRequest{Value: "not-a-number"})
		assert.ErrorIs(t, err, service.ErrInvalidInput, "key %s", key)
	}
}

func TestSettingsService_ExchangeRateMustBePositive(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	_, err := svc.Set(ctx, domain.SettingDefaultExchangeRate, &domain.UpdateSettingRequest{Value: "0"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Set(ctx, domain.SettingDefaultExchangeRate, &domain.UpdateSettingRequest{Value: "-4000"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Set(ctx, domain.SettingDefaultExchangeRate, &domain.UpdateSettingRequest{Value: "4123.75"})
	assert.NoError(t, err)
}

func TestSettingsService_ValidityDaysMustBeWhole(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	_, err := svc.Set(ctx, domain.SettingQuoteValidityDays, &domain.UpdateSettingRequest{Value: "0"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Set(ctx, domain.SettingQuoteValidityDays, &domain.UpdateSettingRequest{Value: "2.5"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Set(ctx, domain.SettingQuoteValidityDays, &domain.UpdateSettingRequest{Value: "45"})
	assert.NoError(t, err)
}

func TestSettingsService_GetUnknownKey(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	_, err := svc.Get(ctx, "no_such_setting")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSettingsService_Delete(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSettingsService(db)
	ctx := quotationTestContext()

	_, err := svc.Set(ctx, domain.SettingDefaultMarginPercent, &domain.UpdateSettingRequest{Value: "18"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.SettingDefaultMarginPercent))

	_, err = svc.Get(ctx, domain.SettingDefaultMarginPercent)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
