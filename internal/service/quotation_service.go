package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/freightrates"
	"github.com/DR-Danke/Kompass-sub005/internal/fx"
	"github.com/DR-Danke/Kompass-sub005/internal/mapper"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// mutationWarningText accompanies edits applied after a quotation was
// already exposed to the client
const mutationWarningText = "quotation has already been sent; changes will not be visible to the client until it is re-sent"

type QuotationService struct {
	quotationRepo    *repository.QuotationRepository
	itemRepo         *repository.QuotationItemRepository
	historyRepo      *repository.StatusHistoryRepository
	clientRepo       *repository.ClientRepository
	productRepo      *repository.ProductRepository
	activityRepo     *repository.ActivityRepository
	settingRepo      *repository.PricingSettingRepository
	numberSeqService *NumberSequenceService
	rateProvider     fx.RateProvider
	freightClient    *freightrates.Client
	mailer           Mailer
	baseCurrency     string
	quoteCurrency    string
	logger           *zap.Logger
	db               *gorm.DB
}

func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	itemRepo *repository.QuotationItemRepository,
	historyRepo *repository.StatusHistoryRepository,
	clientRepo *repository.ClientRepository,
	productRepo *repository.ProductRepository,
	activityRepo *repository.ActivityRepository,
	settingRepo *repository.PricingSettingRepository,
	numberSeqService *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *QuotationService {
	return &QuotationService{
		quotationRepo:    quotationRepo,
		itemRepo:         itemRepo,
		historyRepo:      historyRepo,
		clientRepo:       clientRepo,
		productRepo:      productRepo,
		activityRepo:     activityRepo,
		settingRepo:      settingRepo,
		numberSeqService: numberSeqService,
		mailer:           NoopMailer{},
		baseCurrency:     "USD",
		quoteCurrency:    "COP",
		logger:           logger,
		db:               db,
	}
}

// SetRateProvider wires the exchange rate provider. Optional; without
// it every calculation must carry an explicit rate or rely on the
// stored default.
func (s *QuotationService) SetRateProvider(provider fx.RateProvider) {
	s.rateProvider = provider
}

// SetFreightRatesClient wires the freight rates warehouse client.
// Called after construction because the client is optional.
func (s *QuotationService) SetFreightRatesClient(client *freightrates.Client) {
	s.freightClient = client
}

// SetMailer wires the outbound mail sender
func (s *QuotationService) SetMailer(mailer Mailer) {
	if mailer != nil {
		s.mailer = mailer
	}
}

// Create creates a new draft quotation with initial items
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}

	incoterm := req.Incoterm
	if incoterm == "" {
		incoterm = client.PreferredIncoterm
	}
	if !incoterm.IsValid() {
		return nil, fmt.Errorf("%w: incoterm %q", ErrInvalidInput, incoterm)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	marginPercent, err := s.resolveMarginPercent(ctx, req.MarginPercent)
	if err != nil {
		return nil, err
	}
	exchangeRate, err := s.resolveExchangeRate(ctx, req.ExchangeRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	validUntil := req.ValidUntil
	if validUntil == nil {
		days := s.quoteValidityDays(ctx)
		until := now.AddDate(0, 0, days)
		validUntil = &until
	}

	quotation := &domain.Quotation{
		Title:               req.Title,
		ClientID:            client.ID,
		ClientName:          client.Name,
		Status:              domain.QuotationStatusDraft,
		Incoterm:            incoterm,
		Currency:            currency,
		PortOfEntry:         req.PortOfEntry,
		FreightCost:         req.FreightCost,
		InsuranceCost:       req.InsuranceCost,
		InspectionCost:      req.InspectionCost,
		OtherCosts:          req.OtherCosts,
		FreightNationalCost: req.FreightNationalCost,
		NationalizationCost: req.NationalizationCost,
		TariffPercent:       req.TariffPercent,
		DiscountPercent:     req.DiscountPercent,
		MarginPercent:       marginPercent,
		ExchangeRate:        exchangeRate.InexactFloat64(),
		ValidFrom:           &now,
		ValidUntil:          validUntil,
		Notes:               req.Notes,
		Version:             1,
		CreatedByID:         auth.ActorID(ctx),
		CreatedByName:       auth.ActorName(ctx),
		UpdatedByID:         auth.ActorID(ctx),
		UpdatedByName:       auth.ActorName(ctx),
	}

	items := make([]domain.QuotationItem, 0, len(req.Items))
	for i := range req.Items {
		item, err := s.buildItem(ctx, &req.Items[i], i)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	quotation.Items = items

	if err := s.recalculate(quotation); err != nil {
		return nil, err
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	// Reload with relations
	quotation, err = s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Quotation created",
		fmt.Sprintf("Draft quotation '%s' created for %s with %d item(s)", quotation.Title, quotation.ClientName, len(quotation.Items)))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// GetByID returns a quotation, applying lazy expiry first: a read of a
// quotation whose validity window has closed observes it as expired.
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// List returns a paginated quotation listing
func (s *QuotationService) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.QuotationDTO, int64, error) {
	quotations, total, err := s.quotationRepo.List(ctx, page, pageSize, clientID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}

	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}
	return dtos, total, nil
}

// Search finds quotations matching the query in title, number or client name
func (s *QuotationService) Search(ctx context.Context, query string, limit int) ([]domain.QuotationDTO, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	quotations, err := s.quotationRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search quotations: %w", err)
	}
	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}
	return dtos, nil
}

// Update edits header fields and recomputes totals. Edits after the
// quotation was sent succeed but return a warning; edits in a terminal
// status are rejected.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationMutationDTO, error) {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if !quotation.Status.AllowsItemMutation() {
		return nil, ErrQuotationLocked
	}

	if req.Title != nil {
		quotation.Title = *req.Title
	}
	if req.Incoterm != nil {
		if !req.Incoterm.IsValid() {
			return nil, fmt.Errorf("%w: incoterm %q", ErrInvalidInput, *req.Incoterm)
		}
		quotation.Incoterm = *req.Incoterm
	}
	if req.Currency != nil {
		quotation.Currency = *req.Currency
	}
	if req.PortOfEntry != nil {
		quotation.PortOfEntry = *req.PortOfEntry
	}
	if req.FreightCost != nil {
		quotation.FreightCost = *req.FreightCost
	}
	if req.InsuranceCost != nil {
		quotation.InsuranceCost = *req.InsuranceCost
	}
	if req.InspectionCost != nil {
		quotation.InspectionCost = *req.InspectionCost
	}
	if req.OtherCosts != nil {
		quotation.OtherCosts = *req.OtherCosts
	}
	if req.FreightNationalCost != nil {
		quotation.FreightNationalCost = *req.FreightNationalCost
	}
	if req.NationalizationCost != nil {
		quotation.NationalizationCost = *req.NationalizationCost
	}
	if req.TariffPercent != nil {
		quotation.TariffPercent = *req.TariffPercent
	}
	if req.DiscountPercent != nil {
		quotation.DiscountPercent = *req.DiscountPercent
	}
	if req.MarginPercent != nil {
		quotation.MarginPercent = *req.MarginPercent
	}
	if req.ExchangeRate != nil {
		quotation.ExchangeRate = *req.ExchangeRate
	}
	if req.ValidUntil != nil {
		quotation.ValidUntil = req.ValidUntil
	}
	if req.Notes != nil {
		quotation.Notes = *req.Notes
	}

	if err := s.recalculate(quotation); err != nil {
		return nil, err
	}

	if err := s.saveWithVersion(ctx, quotation, req.Version); err != nil {
		return nil, err
	}

	// Reload with relations
	quotation, err = s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "Quotation updated",
		fmt.Sprintf("Quotation '%s' updated", quotation.Title))

	return s.mutationResult(quotation), nil
}

// Delete removes a quotation. Only drafts may be deleted; anything
// that was exposed to a client stays on record.
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return err
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return ErrQuotationLocked
	}

	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}

	s.logActivity(ctx, id, "Quotation deleted",
		fmt.Sprintf("Draft quotation '%s' deleted", quotation.Title))
	return nil
}

// Duplicate copies a quotation into a fresh draft with no number, no
// history and version 1. Prices are recomputed with a current rate.
func (s *QuotationService) Duplicate(ctx context.Context, id uuid.UUID, req *domain.DuplicateQuotationRequest) (*domain.QuotationDTO, error) {
	source, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}

	clientID := source.ClientID
	clientName := source.ClientName
	if req.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *req.ClientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to verify client: %w", err)
		}
		clientID = client.ID
		clientName = client.Name
	}

	title := req.Title
	if title == "" {
		title = source.Title + " (copy)"
	}
	notes := ""
	if req.CopyNotes {
		notes = source.Notes
	}

	exchangeRate, err := s.resolveExchangeRate(ctx, nil)
	if err != nil {
		// Duplication falls back to the source rate when no fresh
		// rate is available; the draft is editable anyway.
		exchangeRate = decimal.NewFromFloat(source.ExchangeRate)
	}

	now := time.Now().UTC()
	until := now.AddDate(0, 0, s.quoteValidityDays(ctx))

	draft := &domain.Quotation{
		Title:               title,
		ClientID:            clientID,
		ClientName:          clientName,
		Status:              domain.QuotationStatusDraft,
		Incoterm:            source.Incoterm,
		Currency:            source.Currency,
		PortOfEntry:         source.PortOfEntry,
		FreightCost:         source.FreightCost,
		InsuranceCost:       source.InsuranceCost,
		InspectionCost:      source.InspectionCost,
		OtherCosts:          source.OtherCosts,
		FreightNationalCost: source.FreightNationalCost,
		NationalizationCost: source.NationalizationCost,
		TariffPercent:       source.TariffPercent,
		DiscountPercent:     source.DiscountPercent,
		MarginPercent:       source.MarginPercent,
		ExchangeRate:        exchangeRate.InexactFloat64(),
		ValidFrom:           &now,
		ValidUntil:          &until,
		Notes:               notes,
		Version:             1,
		CreatedByID:         auth.ActorID(ctx),
		CreatedByName:       auth.ActorName(ctx),
		UpdatedByID:         auth.ActorID(ctx),
		UpdatedByName:       auth.ActorName(ctx),
	}

	items := make([]domain.QuotationItem, len(source.Items))
	for i, item := range source.Items {
		items[i] = domain.QuotationItem{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			UnitOfMeasure:     item.UnitOfMeasure,
			UnitCost:          item.UnitCost,
			UnitPrice:         item.UnitPrice,
			UnitPriceOverride: item.UnitPriceOverride,
			MarkupPercent:     item.MarkupPercent,
			TariffPercent:     item.TariffPercent,
			TariffAmount:      item.TariffAmount,
			FreightAmount:     item.FreightAmount,
			SortOrder:         item.SortOrder,
		}
	}
	draft.Items = items

	if err := s.recalculate(draft); err != nil {
		return nil, err
	}

	if err := s.quotationRepo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create duplicate: %w", err)
	}

	draft, err = s.quotationRepo.GetByID(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload duplicate: %w", err)
	}

	s.logActivity(ctx, draft.ID, "Quotation duplicated",
		fmt.Sprintf("Created draft '%s' as a copy of %s", draft.Title, source.QuotationNumber))

	dto := mapper.ToQuotationDTO(draft)
	return &dto, nil
}

// RefreshNationalCosts looks up current national freight and
// nationalization figures from the freight rates warehouse and stores
// them on the quotation. Lookup failures surface as timeouts; the
// stored values are never silently replaced with stale data.
func (s *QuotationService) RefreshNationalCosts(ctx context.Context, id uuid.UUID) (*domain.QuotationMutationDTO, error) {
	if !s.freightClient.IsEnabled() {
		return nil, fmt.Errorf("%w: freight rates source not configured", ErrInvalidInput)
	}

	quotation, err := s.getWithLazyExpiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quotation.Status.AllowsItemMutation() {
		return nil, ErrQuotationLocked
	}
	if quotation.PortOfEntry == "" {
		return nil, fmt.Errorf("%w: quotation has no port of entry", ErrInvalidInput)
	}

	client, err := s.clientRepo.GetByID(ctx, quotation.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	// Chargeable weight is not tracked per item; the tariff minimum
	// charge covers typical consolidated shipments.
	freight, err := s.freightClient.NationalFreightCOP(ctx, quotation.PortOfEntry, client.City, 0)
	if err != nil {
		return nil, s.mapFreightError(err)
	}

	hsChapter := quotationHSChapter(quotation.Items)
	nationalization, err := s.freightClient.NationalizationCOP(ctx, quotation.PortOfEntry, hsChapter)
	if err != nil {
		return nil, s.mapFreightError(err)
	}

	quotation.FreightNationalCost, _ = freight.Round(2).Float64()
	quotation.NationalizationCost, _ = nationalization.Round(2).Float64()

	if err := s.recalculate(quotation); err != nil {
		return nil, err
	}
	if err := s.saveWithVersion(ctx, quotation, 0); err != nil {
		return nil, err
	}

	quotation, err = s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	s.logActivity(ctx, quotation.ID, "National costs refreshed",
		fmt.Sprintf("Freight and nationalization figures refreshed for port %s", quotation.PortOfEntry))

	return s.mutationResult(quotation), nil
}

func (s *QuotationService) mapFreightError(err error) error {
	switch {
	case errors.Is(err, freightrates.ErrLookupTimeout):
		return ErrFreightLookupTimeout
	case errors.Is(err, freightrates.ErrRateNotFound):
		return fmt.Errorf("%w: no tariff for route", ErrInvalidInput)
	default:
		return fmt.Errorf("freight rate lookup failed: %w", err)
	}
}

// quotationHSChapter resolves the HS chapter used for the
// nationalization fee lookup. Codes live on products, not on item
// snapshots, so the general chapter applies for now.
// TODO: snapshot hs_code onto quotation items so the chapter can be
// derived from the dominant line.
func quotationHSChapter(_ []domain.QuotationItem) string {
	return "99"
}

// getWithLazyExpiry loads a quotation and applies lazy expiry before
// returning it
func (s *QuotationService) getWithLazyExpiry(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return s.applyLazyExpiry(ctx, quotation)
}

// saveWithVersion persists the quotation honoring the optimistic
// concurrency check. expectedVersion zero means the caller did not
// supply one; the current version is used as the guard.
func (s *QuotationService) saveWithVersion(ctx context.Context, quotation *domain.Quotation, expectedVersion int) error {
	if expectedVersion == 0 {
		expectedVersion = quotation.Version
	}
	quotation.UpdatedByID = auth.ActorID(ctx)
	quotation.UpdatedByName = auth.ActorName(ctx)

	err := s.quotationRepo.UpdateWithVersion(ctx, quotation, expectedVersion)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to save quotation: %w", err)
	}
	return nil
}

// mutationResult wraps a DTO with the post-send edit warning when it applies
func (s *QuotationService) mutationResult(quotation *domain.Quotation) *domain.QuotationMutationDTO {
	dto := mapper.ToQuotationDTO(quotation)
	result := &domain.QuotationMutationDTO{Quotation: &dto}
	if quotation.Status.MutationWarning() {
		result.Warning = mutationWarningText
	}
	return result
}

// logActivity records an audit trail entry; failures are logged and
// swallowed so they never fail the business operation
func (s *QuotationService) logActivity(ctx context.Context, quotationID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetQuotation,
		TargetID:    quotationID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now().UTC(),
		CreatorID:   auth.ActorID(ctx),
		CreatorName: auth.ActorName(ctx),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity",
			zap.String("quotation_id", quotationID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}
