package service

import (
	"context"
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/mapper"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identity used when the system itself drives a transition,
// as with validity expiry.
const (
	systemActorID   = "system"
	systemActorName = "System"
)

// UpdateStatus performs an explicit lifecycle transition. The status
// graph is enforced here; a quotation in a terminal status rejects
// every transition, and any other disallowed edge is reported as an
// invalid transition.
func (s *QuotationService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationStatusRequest) (*domain.QuotationDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	// Expiry is applied by the system when the validity window lapses,
	// never on request.
	if req.Status == domain.QuotationStatusExpired {
		return nil, fmt.Errorf("%w: expired cannot be set explicitly", ErrInvalidTransition)
	}

	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if quotation.Status.IsTerminal() {
		return nil, ErrQuotationLocked
	}
	if !quotation.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, quotation.Status, req.Status)
	}

	return s.transition(ctx, quotation, req.Status, req.Notes, req.Version)
}

// Send moves a quotation from draft to sent. The quotation number is
// issued here, on first exposure; drafts never consume a number.
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID, req *domain.SendQuotationRequest) (*domain.QuotationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if quotation.Status.IsTerminal() {
		return nil, ErrQuotationLocked
	}
	if !quotation.Status.CanTransitionTo(domain.QuotationStatusSent) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, quotation.Status, domain.QuotationStatusSent)
	}
	if len(quotation.Items) == 0 {
		return nil, fmt.Errorf("%w: a quotation needs at least one item before sending", ErrInvalidInput)
	}

	if req.ValidityDays > 0 {
		until := time.Now().UTC().AddDate(0, 0, req.ValidityDays)
		quotation.ValidUntil = &until
	}

	dto, err := s.transition(ctx, quotation, domain.QuotationStatusSent, req.Message, req.Version)
	if err != nil {
		return nil, err
	}

	recipient := req.RecipientEmail
	if recipient == "" {
		if client, cerr := s.clientRepo.GetByID(ctx, quotation.ClientID); cerr == nil {
			recipient = client.Email
		}
	}
	if recipient != "" {
		if err := s.mailer.SendQuotation(ctx, recipient, dto, req.Message); err != nil {
			// The transition already happened; delivery trouble is
			// reported through the activity log, not rolled back.
			s.logger.Warn("quotation mail delivery failed",
				zap.String("quotation_id", id.String()),
				zap.String("recipient", recipient),
				zap.Error(err))
			s.logActivity(ctx, id, "Mail delivery failed",
				fmt.Sprintf("Could not deliver quotation %s to %s", dto.QuotationNumber, recipient))
		}
	}

	return dto, nil
}

// MarkViewed records that the client opened the quotation. Repeat
// views are idempotent; only the first one transitions.
func (s *QuotationService) MarkViewed(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if quotation.Status != domain.QuotationStatusSent {
		// Already viewed, negotiating or beyond: a repeat open is not
		// an error and not a transition either.
		dto := mapper.ToQuotationDTO(quotation)
		return &dto, nil
	}

	return s.transition(ctx, quotation, domain.QuotationStatusViewed, "", 0)
}

// Accept moves the quotation into its accepted terminal status
func (s *QuotationService) Accept(ctx context.Context, id uuid.UUID, notes string, version int) (*domain.QuotationDTO, error) {
	return s.decide(ctx, id, domain.QuotationStatusAccepted, notes, version)
}

// Reject moves the quotation into its rejected terminal status
func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectQuotationRequest) (*domain.QuotationDTO, error) {
	return s.decide(ctx, id, domain.QuotationStatusRejected, req.Reason, req.Version)
}

func (s *QuotationService) decide(ctx context.Context, id uuid.UUID, target domain.QuotationStatus, notes string, version int) (*domain.QuotationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status.IsTerminal() {
		return nil, ErrQuotationLocked
	}
	if !quotation.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, quotation.Status, target)
	}
	return s.transition(ctx, quotation, target, notes, version)
}

// History returns the append-only transition trail, oldest first
func (s *QuotationService) History(ctx context.Context, id uuid.UUID) ([]domain.QuotationStatusHistoryDTO, error) {
	if _, err := s.getWithLazyExpiry(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListByQuotation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}

	dtos := make([]domain.QuotationStatusHistoryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToStatusHistoryDTO(&entries[i])
	}
	return dtos, nil
}

// transition applies a validated status change: stamps, number
// issuance, persistence under the version guard and the history row.
func (s *QuotationService) transition(ctx context.Context, quotation *domain.Quotation, target domain.QuotationStatus, notes string, expectedVersion int) (*domain.QuotationDTO, error) {
	from := quotation.Status
	now := time.Now().UTC()

	if from == domain.QuotationStatusDraft && quotation.QuotationNumber == "" {
		number, err := s.numberSeqService.GenerateQuotationNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate quotation number: %w", err)
		}
		quotation.QuotationNumber = number
	}

	quotation.Status = target
	switch target {
	case domain.QuotationStatusSent:
		quotation.SentAt = &now
	case domain.QuotationStatusViewed:
		if quotation.ViewedAt == nil {
			quotation.ViewedAt = &now
		}
	case domain.QuotationStatusAccepted, domain.QuotationStatusRejected, domain.QuotationStatusExpired:
		quotation.DecidedAt = &now
	}

	if err := s.saveWithVersion(ctx, quotation, expectedVersion); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, quotation.ID, from, target, notes, auth.ActorID(ctx), auth.ActorName(ctx))

	quotation, err := s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Status changed",
		fmt.Sprintf("Quotation %s moved from %s to %s", quotation.QuotationNumber, from, target))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// recordTransition appends the history row. History failures are
// logged loudly because the trail is the audit record, but the already
// committed transition is not unwound.
func (s *QuotationService) recordTransition(ctx context.Context, quotationID uuid.UUID, from, to domain.QuotationStatus, notes, actorID, actorName string) {
	entry := &domain.QuotationStatusHistory{
		QuotationID:   quotationID,
		FromStatus:    &from,
		ToStatus:      to,
		Notes:         notes,
		ChangedByID:   actorID,
		ChangedByName: actorName,
		ChangedAt:     time.Now().UTC(),
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record status transition",
			zap.String("quotation_id", quotationID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
	}
}

// applyLazyExpiry flips a quotation whose validity window has closed
// to expired before the caller sees it. The transition is attributed
// to the system actor and recorded in history like any other. No
// version guard applies; expiry by the clock cannot conflict with
// itself.
func (s *QuotationService) applyLazyExpiry(ctx context.Context, quotation *domain.Quotation) (*domain.Quotation, error) {
	if !s.isExpiryDue(quotation, time.Now().UTC()) {
		return quotation, nil
	}

	from := quotation.Status
	now := time.Now().UTC()
	quotation.Status = domain.QuotationStatusExpired
	quotation.DecidedAt = &now
	quotation.UpdatedByID = systemActorID
	quotation.UpdatedByName = systemActorName

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to expire quotation: %w", err)
	}
	s.recordTransition(ctx, quotation.ID, from, domain.QuotationStatusExpired,
		"validity window closed", systemActorID, systemActorName)

	reloaded, err := s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}
	return reloaded, nil
}

func (s *QuotationService) isExpiryDue(quotation *domain.Quotation, asOf time.Time) bool {
	if quotation.Status.IsTerminal() {
		return false
	}
	return quotation.ValidUntil != nil && quotation.ValidUntil.Before(asOf)
}

// ExpireDue sweeps quotations whose validity window has closed and
// expires them in bulk. Backstop for quotations nobody reads; lazy
// expiry on read covers the rest.
func (s *QuotationService) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	asOf := time.Now().UTC()

	due, err := s.quotationRepo.ListExpirable(ctx, asOf, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expirable quotations: %w", err)
	}

	expired := 0
	for i := range due {
		if _, err := s.applyLazyExpiry(ctx, &due[i]); err != nil {
			s.logger.Error("failed to expire quotation",
				zap.String("quotation_id", due[i].ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}
