package repository

import (
	"context"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareTokenRepository tracks issued share links so they can be
// listed and revoked. Token validity itself is enforced by the JWT
// signature plus the revocation row here.
type ShareTokenRepository struct {
	db *gorm.DB
}

func NewShareTokenRepository(db *gorm.DB) *ShareTokenRepository {
	return &ShareTokenRepository{db: db}
}

func (r *ShareTokenRepository) Create(ctx context.Context, token *domain.ShareToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenID returns the tracking row for a token's unique identifier
func (r *ShareTokenRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.ShareToken, error) {
	var token domain.ShareToken
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *ShareTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShareToken, error) {
	var token domain.ShareToken
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks a token revoked; revoked tokens stop resolving even
// before their signed expiry
func (r *ShareTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.ShareToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ShareTokenRepository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]domain.ShareToken, error) {
	var tokens []domain.ShareToken
	err := r.db.WithContext(ctx).
		Where("quotation_id = ?", quotationID).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}
