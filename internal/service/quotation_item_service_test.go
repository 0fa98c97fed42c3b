package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotationService_ItemMutations_KeepSavedTotals(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Totals hold test")

	savedTotal := dto.Total
	savedGrand := dto.GrandTotal
	require.NotZero(t, savedGrand)

	sent, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	// Adding a line prices the line but leaves the saved totals alone
	added, err := svc.AddItem(ctx, dto.ID, &domain.CreateQuotationItemRequest{
		ProductName: "Second line", Quantity: 4, UnitPrice: float64Ptr(50),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.Warning)
	var second *domain.QuotationItemDTO
	for i := range added.Quotation.Items {
		if added.Quotation.Items[i].ProductName == "Second line" {
			second = &added.Quotation.Items[i]
		}
	}
	require.NotNil(t, second)
	assert.InDelta(t, 200.0, second.LineTotal, 0.01)
	assert.InDelta(t, savedTotal, added.Quotation.Total, 0.01)
	assert.InDelta(t, savedGrand, added.Quotation.GrandTotal, 0.01)

	removed, err := svc.RemoveItem(ctx, dto.ID, dto.Items[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, removed.Warning)
	assert.Len(t, removed.Quotation.Items, 1)
	assert.InDelta(t, savedTotal, removed.Quotation.Total, 0.01)
	assert.InDelta(t, savedGrand, removed.Quotation.GrandTotal, 0.01)
	assert.Greater(t, removed.Quotation.Version, sent.Version)

	// An explicit update is where the totals refresh
	refreshed, err := svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{
		Notes: stringPtr("reprice after edits"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, savedGrand, refreshed.Quotation.GrandTotal)
}
