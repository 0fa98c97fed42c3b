package service

import (
	"context"
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"go.uber.org/zap"
)

// quotationNumberPrefix is the fixed prefix of issued quotation numbers
const quotationNumberPrefix = "QT"

// NumberSequenceService generates unique, formatted quotation numbers.
// Numbers are issued when a quotation first leaves draft, so drafts
// never consume a sequence slot.
//
// Format: QT-{YEAR}-{SEQUENCE}
// Example: QT-2026-0001
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateQuotationNumber generates the next unique quotation number.
// The underlying sequence increment is atomic, so concurrent sends
// never produce the same number.
func (s *NumberSequenceService) GenerateQuotationNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()

	nextSeq, err := s.repo.GetNextNumber(ctx, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate quotation number: %w", err)
	}

	// Format: QT-YYYY-NNNN (zero-padded to 4 digits)
	number := fmt.Sprintf("%s-%d-%04d", quotationNumberPrefix, year, nextSeq)

	s.logger.Info("generated quotation number",
		zap.String("number", number),
		zap.Int("year", year),
		zap.Int("sequence", nextSeq))

	return number, nil
}
