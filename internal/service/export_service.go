package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportService renders quotations into flat files and archives
// snapshots to blob storage. An archive is taken when a quotation is
// sent so the exact document the client saw survives later edits.
type ExportService struct {
	quotationService *QuotationService
	storage          storage.Storage
	logger           *zap.Logger
}

func NewExportService(quotationService *QuotationService, store storage.Storage, logger *zap.Logger) *ExportService {
	return &ExportService{
		quotationService: quotationService,
		storage:          store,
		logger:           logger,
	}
}

// ExportCSV renders one quotation with its lines as CSV. Returns the
// file content and a suggested filename.
func (s *ExportService) ExportCSV(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	quotation, err := s.quotationService.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := [][]string{
		{"Quotation", quotation.QuotationNumber},
		{"Title", quotation.Title},
		{"Client", quotation.ClientName},
		{"Status", string(quotation.Status)},
		{"Incoterm", string(quotation.Incoterm)},
		{"Exchange rate", formatFloat(quotation.ExchangeRate)},
		{"Subtotal (FOB)", formatFloat(quotation.Subtotal)},
		{"Total", formatFloat(quotation.Total)},
		{"Grand total", formatFloat(quotation.GrandTotal)},
		{},
		{"Line", "Product", "SKU", "Quantity", "Unit", "Unit price", "Line total"},
	}
	for _, row := range header {
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to render csv: %w", err)
		}
	}

	for i, item := range quotation.Items {
		row := []string{
			strconv.Itoa(i + 1),
			item.ProductName,
			item.SKU,
			strconv.Itoa(item.Quantity),
			item.UnitOfMeasure,
			formatFloat(item.EffectiveUnitPrice()),
			formatFloat(item.LineTotal),
		}
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to render csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to render csv: %w", err)
	}

	filename := exportFilename(quotation)
	return buf.Bytes(), filename, nil
}

// Archive uploads a CSV snapshot of the quotation to blob storage and
// returns the storage path
func (s *ExportService) Archive(ctx context.Context, id uuid.UUID) (string, error) {
	content, filename, err := s.ExportCSV(ctx, id)
	if err != nil {
		return "", err
	}

	path, size, err := s.storage.Upload(ctx, filename, "text/csv", bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to archive quotation export: %w", err)
	}

	s.logger.Info("quotation archived",
		zap.String("quotation_id", id.String()),
		zap.String("path", path),
		zap.Int64("size", size))
	return path, nil
}

func exportFilename(quotation *domain.Quotation) string {
	base := quotation.QuotationNumber
	if base == "" {
		base = "draft-" + quotation.ID.String()
	}
	return fmt.Sprintf("%s-%s.csv", base, time.Now().UTC().Format("20060102-150405"))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
