package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createClientService(db *gorm.DB) *service.ClientService {
	return service.NewClientService(
		repository.NewClientRepository(db),
		repository.NewQuotationRepository(db),
		repository.NewActivityRepository(db),
		zap.NewNop(),
	)
}

func TestClientService_Create_Defaults(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createClientService(db)
	ctx := quotationTestContext()

	dto, err := svc.Create(ctx, &domain.CreateClientRequest{
		Name:  "Comercializadora del Pacifico",
		TaxID: "900123456-7",
		Email: "compras@pacifico.co",
	})
	require.NoError(t, err)
	assert.Equal(t, "Colombia", dto.Country)
	assert.Equal(t, domain.IncotermCIF, dto.PreferredIncoterm)
	assert.Equal(t, domain.ClientStatusActive, dto.Status)
}

func TestClientService_Create_DuplicateTaxID(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createClientService(db)
	ctx := quotationTestContext()

	_, err := svc.Create(ctx, &domain.CreateClientRequest{
		Name:  "Primera SAS",
		TaxID: "800555111-2",
		Email: "a@primera.co",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &domain.CreateClientRequest{
		Name:  "Segunda SAS",
		TaxID: "800555111-2",
		Email: "b@segunda.co",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateTaxID)
}

func TestClientService_Create_InvalidIncoterm(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createClientService(db)
	ctx := quotationTestContext()

	_, err := svc.Create(ctx, &domain.CreateClientRequest{
		Name:              "Rara SAS",
		Email:             "x@rara.co",
		PreferredIncoterm: domain.Incoterm("XYZ"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientService_Update_TaxIDCollision(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createClientService(db)
	ctx := quotationTestContext()

	first := testutil.CreateTestClient(t, db, "Uno Ltda")
	second := testutil.CreateTestClient(t, db, "Dos Ltda")

	_, err := svc.Update(ctx, second.ID, &domain.UpdateClientRequest{
		TaxID: stringPtr(first.TaxID),
	})
	assert.ErrorIs(t, err, service.ErrDuplicateTaxID)
}

func TestClientService_Delete_BlockedByQuotations(t *testing.T) {
	db := setupQuotationTestDB(t)
	clientSvc := createClientService(db)
	quotationSvc := createQuotationService(db)
	ctx := quotationTestContext()

	client := testutil.CreateTestClient(t, db, "Con Cotizaciones SAS")
	_, err := quotationSvc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Pending deal",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
	})
	require.NoError(t, err)

	err = clientSvc.Delete(ctx, client.ID)
	assert.ErrorIs(t, err, service.ErrClientHasQuotations)

	// A client with no quotations deletes cleanly
	empty := testutil.CreateTestClient(t, db, "Sin Historia SAS")
	require.NoError(t, clientSvc.Delete(ctx, empty.ID))
	_, err = clientSvc.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestClientService_GetByID_CountsActiveQuotations(t *testing.T) {
	db := setupQuotationTestDB(t)
	clientSvc := createClientService(db)
	quotationSvc := createQuotationService(db)
	ctx := quotationTestContext()

	client := testutil.CreateTestClient(t, db, "Activa SAS")
	_, err := quotationSvc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Open quote",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
	})
	require.NoError(t, err)

	dto, err := clientSvc.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.ActiveQuotations)
}
