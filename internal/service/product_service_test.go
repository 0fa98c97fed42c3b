package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createProductService(db *gorm.DB) *service.ProductService {
	return service.NewProductService(
		repository.NewProductRepository(db),
		repository.NewSupplierRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
}

func TestProductService_Create(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createProductService(db)
	ctx := quotationTestContext()
	supplier := testutil.CreateTestSupplier(t, db, "Shenzhen Leda")

	dto, err := svc.Create(ctx, &domain.CreateProductRequest{
		SKU:           "LED-PANEL-60",
		Name:          "LED panel 60x60",
		SupplierID:    &supplier.ID,
		HSCode:        "9405.40.10",
		HSDutyPercent: 5,
		UnitCost:      12.50,
		UnitPrice:     18.00,
	})
	require.NoError(t, err)
	assert.Equal(t, "LED-PANEL-60", dto.SKU)
	assert.Equal(t, "unit", dto.UnitOfMeasure)
	assert.Equal(t, "USD", dto.Currency)
	assert.True(t, dto.IsActive)
	assert.Equal(t, supplier.Name, dto.SupplierName)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createProductService(db)
	ctx := quotationTestContext()

	_, err := svc.Create(ctx, &domain.CreateProductRequest{SKU: "CABLE-2M", Name: "USB cable 2m"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &domain.CreateProductRequest{SKU: "CABLE-2M", Name: "Another cable"})
	assert.ErrorIs(t, err, service.ErrDuplicateSKU)
}

func TestProductService_Create_UnknownSupplier(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createProductService(db)
	ctx := quotationTestContext()

	missing := uuid.New()
	_, err := svc.Create(ctx, &domain.CreateProductRequest{
		Name:       "Orphan widget",
		SupplierID: &missing,
	})
	assert.ErrorIs(t, err, service.ErrSupplierNotFound)
}

func TestProductService_Update_SKUCollision(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createProductService(db)
	ctx := quotationTestContext()

	first, err := svc.Create(ctx, &domain.CreateProductRequest{SKU: "SKU-A", Name: "Widget A"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &domain.CreateProductRequest{SKU: "SKU-B", Name: "Widget B"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, &domain.UpdateProductRequest{SKU: stringPtr(first.SKU)})
	assert.ErrorIs(t, err, service.ErrDuplicateSKU)

	// Re-submitting a product's own SKU is not a collision
	updated, err := svc.Update(ctx, second.ID, &domain.UpdateProductRequest{
		SKU:       stringPtr("SKU-B"),
		UnitPrice: float64Ptr(22),
	})
	require.NoError(t, err)
	assert.InDelta(t, 22.0, updated.UnitPrice, 0.001)
}

func TestProductService_DeleteLeavesQuotationSnapshots(t *testing.T) {
	db := setupQuotationTestDB(t)
	productSvc := createProductService(db)
	quotationSvc := createQuotationService(db)
	ctx := quotationTestContext()

	client := testutil.CreateTestClient(t, db, "Snapshot SAS")
	supplier := testutil.CreateTestSupplier(t, db, "Guangzhou Parts")
	product := testutil.CreateTestProduct(t, db, supplier, "Doomed widget")

	dto, err := quotationSvc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Before catalog purge",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductID: &product.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)

	require.NoError(t, productSvc.Delete(ctx, product.ID))

	_, err = productSvc.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, service.ErrProductNotFound)

	// The quotation line survives with its copied name and price
	reloaded, err := quotationSvc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, product.Name, reloaded.Items[0].ProductName)
}
