package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createSupplierService(db *gorm.DB) *service.SupplierService {
	return service.NewSupplierService(
		repository.NewSupplierRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
}

func TestSupplierService_Create_Defaults(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSupplierService(db)
	ctx := quotationTestContext()

	dto, err := svc.Create(ctx, &domain.CreateSupplierRequest{
		Name:         "Ningbo Fasteners Co",
		LeadTimeDays: 21,
	})
	require.NoError(t, err)
	assert.Equal(t, "China", dto.Country)
	assert.True(t, dto.IsActive)
	assert.Equal(t, 21, dto.LeadTimeDays)
}

func TestSupplierService_UpdateAndDeactivate(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSupplierService(db)
	ctx := quotationTestContext()

	dto, err := svc.Create(ctx, &domain.CreateSupplierRequest{Name: "Yiwu Trading"})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, dto.ID, &domain.UpdateSupplierRequest{
		Rating:   float64Ptr(8.5),
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.InDelta(t, 8.5, updated.Rating, 0.001)
	assert.False(t, updated.IsActive)
}

func TestSupplierService_GetUnknown(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createSupplierService(db)
	ctx := quotationTestContext()

	_, err := svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrSupplierNotFound)
}
