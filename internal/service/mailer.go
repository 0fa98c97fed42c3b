package service

import (
	"context"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
)

// Mailer delivers quotations to clients. The default wiring is a
// no-op; deployments plug their provider in at startup.
type Mailer interface {
	SendQuotation(ctx context.Context, recipient string, quotation *domain.QuotationDTO, message string) error
}

// NoopMailer satisfies Mailer without sending anything
type NoopMailer struct{}

func (NoopMailer) SendQuotation(context.Context, string, *domain.QuotationDTO, string) error {
	return nil
}
