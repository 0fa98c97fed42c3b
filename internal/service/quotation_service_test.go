package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupQuotationTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createQuotationService(db *gorm.DB) *service.QuotationService {
	logger := zap.NewNop()
	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewQuotationItemRepository(db),
		repository.NewStatusHistoryRepository(db),
		repository.NewClientRepository(db),
		repository.NewProductRepository(db),
		repository.NewActivityRepository(db),
		repository.NewPricingSettingRepository(db),
		service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger),
		logger,
		db,
	)
}

func quotationTestContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "user-1",
		DisplayName: "Test User",
		Email:       "test@example.com",
		Roles:       []string{auth.RoleSales},
	})
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

func TestQuotationService_Create(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Importadora Andina")

	req := &domain.CreateQuotationRequest{
		Title:         "Electronics Q3",
		ClientID:      client.ID,
		ExchangeRate:  float64Ptr(4000),
		MarginPercent: float64Ptr(20),
		TariffPercent: 10,
		FreightCost:   500,
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "USB hub", Quantity: 100, UnitPrice: float64Ptr(10)},
		},
	}

	dto, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusDraft, dto.Status)
	assert.Empty(t, dto.QuotationNumber, "drafts must not consume a number")
	assert.Equal(t, 1, dto.Version)
	assert.Equal(t, client.ID, dto.ClientID)
	// Incoterm defaults from the client profile
	assert.Equal(t, domain.IncotermCIF, dto.Incoterm)
	assert.Len(t, dto.Items, 1)

	// Subtotal is the FOB value of the lines: 100 x 10 = 1000 USD
	assert.InDelta(t, 1000.0, dto.Subtotal, 0.001)
	// Landed: 1000 + 10% tariff + 500 freight = 1600 USD, x4000 COP,
	// +20% margin = 7,680,000 COP
	assert.InDelta(t, 7680000.0, dto.Total, 0.01)
	assert.InDelta(t, 7680000.0, dto.GrandTotal, 0.01)
	assert.NotNil(t, dto.ValidUntil)
}

func TestQuotationService_Create_UnknownClient(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()

	_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Orphan",
		ClientID:     testutil.CreateTestClient(t, db, "Someone").ID,
		ExchangeRate: float64Ptr(4000),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Orphan",
		ClientID:     uuid.New(),
		ExchangeRate: float64Ptr(4000),
	})
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestQuotationService_Create_NoRateAvailable(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Sin Tasa SAS")

	// No explicit rate, no provider, no stored default
	_, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:    "No rate",
		ClientID: client.ID,
	})
	assert.ErrorIs(t, err, service.ErrRateUnavailable)
}

func TestQuotationService_Create_StoredDefaultRate(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Con Tasa SAS")

	require.NoError(t, db.Create(&domain.PricingSetting{
		Key:   domain.SettingDefaultExchangeRate,
		Value: "4100.50",
	}).Error)

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:    "Default rate",
		ClientID: client.ID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 4100.50, dto.ExchangeRate, 0.001)
}

func TestQuotationService_Update_ItemSnapshotsUnaffectedByCatalog(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Snapshot SAS")
	supplier := testutil.CreateTestSupplier(t, db, "Shenzhen Tech")
	product := testutil.CreateTestProduct(t, db, supplier, "Router")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Snapshot test",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductID: &product.ID, Quantity: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.InDelta(t, 100.0, dto.Items[0].UnitPrice, 0.001)
	// Tariff percent snapshots the product duty rate
	assert.InDelta(t, 5.0, dto.Items[0].TariffPercent, 0.001)

	// Raise the catalog price; the quotation keeps its snapshot
	require.NoError(t, db.Model(product).Update("unit_price", 999).Error)

	reloaded, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, reloaded.Items[0].UnitPrice, 0.001)
}

func TestQuotationService_Update_VersionConflict(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Concurrencia SAS")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Versioned",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
	})
	require.NoError(t, err)
	require.Equal(t, 1, dto.Version)

	first, err := svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{
		Notes:   stringPtr("first edit"),
		Version: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quotation.Version)

	// A second writer holding the stale version loses
	_, err = svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{
		Notes:   stringPtr("stale edit"),
		Version: 1,
	})
	assert.ErrorIs(t, err, service.ErrConcurrentModification)
}

func TestQuotationService_Update_RecalculatesTotals(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Recalculo SAS")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Recalc",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Widget", Quantity: 10, UnitPrice: float64Ptr(10)},
		},
	})
	require.NoError(t, err)
	assert.InDelta(t, 400000.0, dto.Total, 0.01) // 100 USD x 4000

	updated, err := svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{
		ExchangeRate: float64Ptr(4200),
	})
	require.NoError(t, err)
	assert.InDelta(t, 420000.0, updated.Quotation.Total, 0.01)
	assert.Empty(t, updated.Warning, "draft edits carry no warning")
}

func TestQuotationService_Delete_DraftOnly(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Borrado SAS")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "To delete",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Thing", Quantity: 1, UnitPrice: float64Ptr(5)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, dto.ID))
	_, err = svc.GetByID(ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrQuotationNotFound)

	// A sent quotation cannot be deleted
	sent, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Sent one",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Thing", Quantity: 1, UnitPrice: float64Ptr(5)},
		},
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, sent.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	err = svc.Delete(ctx, sent.ID)
	assert.ErrorIs(t, err, service.ErrQuotationLocked)
}

func TestQuotationService_Duplicate(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Duplicado SAS")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Original",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Notes:        "internal notes",
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Cable", Quantity: 50, UnitPrice: float64Ptr(2)},
		},
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)
	_, err = svc.Accept(ctx, dto.ID, "", 0)
	require.NoError(t, err)

	// Duplicating a terminal quotation yields a fresh editable draft
	dup, err := svc.Duplicate(ctx, dto.ID, &domain.DuplicateQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusDraft, dup.Status)
	assert.Empty(t, dup.QuotationNumber)
	assert.Equal(t, 1, dup.Version)
	assert.Equal(t, "Original (copy)", dup.Title)
	assert.Empty(t, dup.Notes, "notes are not copied unless requested")
	assert.Len(t, dup.Items, 1)

	history, err := svc.History(ctx, dup.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "a duplicate starts with no history")
}

func stringPtr(s string) *string { return &s }
