package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateForQuotation(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Calculadora SAS")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:         "Preview math",
		ClientID:      client.ID,
		ExchangeRate:  float64Ptr(4000),
		MarginPercent: float64Ptr(20),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Widget", Quantity: 10, UnitPrice: float64Ptr(5)},
		},
	})
	require.NoError(t, err)

	// 10 x 5.00 = 50 USD, x4000 = 200,000 COP, +20% = 240,000 COP
	quote, err := svc.CalculateForQuotation(ctx, dto.ID, &domain.CalculateQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "50", quote.SubtotalFOBUSD.String())
	assert.Equal(t, "200000", quote.SubtotalBeforeMarginCOP.String())
	assert.Equal(t, "40000", quote.MarginCOP.String())
	assert.Equal(t, "240000", quote.TotalCOP.String())
}

func TestCalculateForQuotation_Idempotent(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Idempotent preview")

	first, err := svc.CalculateForQuotation(ctx, dto.ID, nil)
	require.NoError(t, err)
	second, err := svc.CalculateForQuotation(ctx, dto.ID, nil)
	require.NoError(t, err)

	assert.True(t, first.TotalCOP.Equal(second.TotalCOP))
	assert.True(t, first.SubtotalFOBUSD.Equal(second.SubtotalFOBUSD))
	assert.True(t, first.MarginCOP.Equal(second.MarginCOP))
}

func TestCalculateForQuotation_OverridesDoNotPersist(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Override preview")

	withOverride, err := svc.CalculateForQuotation(ctx, dto.ID, &domain.CalculateQuotationRequest{
		MarginPercent: float64Ptr(50),
	})
	require.NoError(t, err)

	baseline, err := svc.CalculateForQuotation(ctx, dto.ID, nil)
	require.NoError(t, err)
	assert.True(t, withOverride.TotalCOP.GreaterThan(baseline.TotalCOP))

	// Saved totals are untouched by previews
	reloaded, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.InDelta(t, dto.Total, reloaded.Total, 0.001)
}

func TestCalculateForQuotation_NotFound(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()

	_, err := svc.CalculateForQuotation(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)
}
