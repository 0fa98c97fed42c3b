package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/config"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/mapper"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shareAudience = "kompass-share"

// ShareService issues and resolves public share links. A link is a
// signed token whose identifier is tracked server side so individual
// links can be revoked before they expire.
type ShareService struct {
	tokenRepo        *repository.ShareTokenRepository
	quotationService *QuotationService
	cfg              *config.ShareConfig
	issuer           string
	logger           *zap.Logger
}

func NewShareService(tokenRepo *repository.ShareTokenRepository, quotationService *QuotationService, cfg *config.ShareConfig, issuer string, logger *zap.Logger) *ShareService {
	return &ShareService{
		tokenRepo:        tokenRepo,
		quotationService: quotationService,
		cfg:              cfg,
		issuer:           issuer,
		logger:           logger,
	}
}

type shareClaims struct {
	jwt.RegisteredClaims
}

// Issue creates a share link for a quotation. The raw token appears
// only in this response; afterwards only its identifier is retained.
func (s *ShareService) Issue(ctx context.Context, quotationID uuid.UUID, req *domain.ShareQuotationRequest) (*domain.ShareTokenDTO, error) {
	if s.cfg.Secret == "" {
		return nil, fmt.Errorf("%w: share links are not configured", ErrInvalidInput)
	}

	quotation, err := s.quotationService.getWithLazyExpiry(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if quotation.Status == domain.QuotationStatusDraft {
		return nil, fmt.Errorf("%w: drafts cannot be shared", ErrInvalidInput)
	}

	days := req.ExpiresInDays
	if days <= 0 {
		days = s.cfg.DefaultExpiryDays
	}
	if s.cfg.MaxExpiryDays > 0 && days > s.cfg.MaxExpiryDays {
		days = s.cfg.MaxExpiryDays
	}

	now := time.Now().UTC()
	expiresAt := now.AddDate(0, 0, days)
	tokenID := uuid.NewString()

	claims := shareClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   quotationID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{shareAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign share token: %w", err)
	}

	record := &domain.ShareToken{
		QuotationID: quotationID,
		TokenID:     tokenID,
		IssuedByID:  auth.ActorID(ctx),
		ExpiresAt:   expiresAt,
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store share token: %w", err)
	}

	s.quotationService.logActivity(ctx, quotationID, "Share link issued",
		fmt.Sprintf("Share link issued for quotation %s, valid %d day(s)", quotation.QuotationNumber, days))

	dto := mapper.ToShareTokenDTO(record)
	dto.Token = signed
	dto.ShareURL = fmt.Sprintf("%s/q/%s", s.cfg.BaseURL, signed)
	return &dto, nil
}

// Resolve validates a share token and returns the public view of its
// quotation. A successful resolve counts as a client view. Every
// failure mode collapses into one sentinel so callers cannot probe
// whether a token exists, expired or was revoked.
func (s *ShareService) Resolve(ctx context.Context, tokenString string) (*domain.PublicQuotationDTO, error) {
	claims := &shareClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(shareAudience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, ErrShareTokenInvalid
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrShareTokenInvalid
	}

	record, err := s.tokenRepo.GetByTokenID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up share token: %w", err)
	}
	if record.RevokedAt != nil || time.Now().UTC().After(record.ExpiresAt) {
		return nil, ErrShareTokenInvalid
	}

	quotationID, err := uuid.Parse(claims.Subject)
	if err != nil || quotationID != record.QuotationID {
		return nil, ErrShareTokenInvalid
	}

	// A resolve is a client view
	if _, err := s.quotationService.MarkViewed(ctx, quotationID); err != nil {
		if errors.Is(err, ErrQuotationNotFound) {
			return nil, ErrShareTokenInvalid
		}
		return nil, err
	}

	quotation, err := s.quotationService.quotationRepo.GetByID(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	public := mapper.ToPublicQuotationDTO(quotation)
	return &public, nil
}

// Revoke invalidates one issued share link
func (s *ShareService) Revoke(ctx context.Context, quotationID uuid.UUID, tokenID string) error {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return ErrShareTokenInvalid
	}
	record, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShareTokenInvalid
		}
		return fmt.Errorf("failed to look up share token: %w", err)
	}
	if record.QuotationID != quotationID {
		return ErrShareTokenInvalid
	}

	if err := s.tokenRepo.Revoke(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShareTokenInvalid
		}
		return fmt.Errorf("failed to revoke share token: %w", err)
	}

	s.quotationService.logActivity(ctx, quotationID, "Share link revoked",
		"A share link was revoked before its expiry")
	return nil
}

// List returns the share links issued for a quotation, newest first.
// Raw tokens are never included.
func (s *ShareService) List(ctx context.Context, quotationID uuid.UUID) ([]domain.ShareTokenDTO, error) {
	if _, err := s.quotationService.getWithLazyExpiry(ctx, quotationID); err != nil {
		return nil, err
	}
	records, err := s.tokenRepo.ListByQuotation(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list share tokens: %w", err)
	}
	dtos := make([]domain.ShareTokenDTO, len(records))
	for i := range records {
		dtos[i] = mapper.ToShareTokenDTO(&records[i])
	}
	return dtos, nil
}
