package service_test

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/storage"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createExportService(t *testing.T, db *gorm.DB, qsvc *service.QuotationService) *service.ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewExportService(qsvc, store, zap.NewNop())
}

func TestExportService_ExportCSV(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	esvc := createExportService(t, db, qsvc)
	ctx := quotationTestContext()

	client := testutil.CreateTestClient(t, db, "Exportable SAS")
	dto, err := qsvc.Create(ctx, &domain.CreateQuotationRequest{
		Title:         "Export run",
		ClientID:      client.ID,
		ExchangeRate:  float64Ptr(4000),
		MarginPercent: float64Ptr(20),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Solar inverter", SKU: "INV-5K", Quantity: 4, UnitPrice: float64Ptr(250)},
			{ProductName: "Mounting kit", Quantity: 4, UnitPrice: float64Ptr(30)},
		},
	})
	require.NoError(t, err)

	content, filename, err := esvc.ExportCSV(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "draft-"), "drafts have no number to name the file after")
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "Export run"}, records[1])
	assert.Equal(t, []string{"Client", "Exportable SAS"}, records[2])

	// Two line rows follow the column header
	var lineHeader int
	for i, row := range records {
		if len(row) > 0 && row[0] == "Line" {
			lineHeader = i
			break
		}
	}
	require.NotZero(t, lineHeader)
	require.Len(t, records, lineHeader+3)
	assert.Equal(t, "Solar inverter", records[lineHeader+1][1])
	assert.Equal(t, "1000.00", records[lineHeader+1][6])
	assert.Equal(t, "Mounting kit", records[lineHeader+2][1])
}

func TestExportService_ExportCSV_SentQuotationUsesNumber(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	esvc := createExportService(t, db, qsvc)
	ctx := quotationTestContext()

	dto := createDraftWithItem(t, db, qsvc, "Numbered export")
	sent, err := qsvc.Send(ctx, dto.ID, &domain.SendQuotationRequest{Version: dto.Version})
	require.NoError(t, err)

	_, filename, err := esvc.ExportCSV(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, sent.QuotationNumber))
}

func TestExportService_Archive(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	esvc := service.NewExportService(qsvc, store, zap.NewNop())
	ctx := quotationTestContext()

	dto := createDraftWithItem(t, db, qsvc, "Archived quote")

	path, err := esvc.Archive(ctx, dto.ID)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	reader, err := store.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	stored, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(stored), "Archived quote")
}
