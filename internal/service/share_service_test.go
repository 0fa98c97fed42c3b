package service_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/config"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createShareService(db *gorm.DB, quotationService *service.QuotationService) *service.ShareService {
	cfg := &config.ShareConfig{
		BaseURL:           "https://app.example.com",
		Secret:            "share-test-secret",
		DefaultExpiryDays: 14,
		MaxExpiryDays:     90,
	}
	return service.NewShareService(
		repository.NewShareTokenRepository(db),
		quotationService,
		cfg,
		"kompass-test",
		zap.NewNop(),
	)
}

func TestShareService_IssueAndResolve(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	ssvc := createShareService(db, qsvc)
	ctx := quotationTestContext()

	dto := createDraftWithItem(t, db, qsvc, "Share test")
	_, err := qsvc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	issued, err := ssvc.Issue(ctx, dto.ID, &domain.ShareQuotationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Contains(t, issued.ShareURL, issued.Token)

	public, err := ssvc.Resolve(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, dto.Title, public.Title)
	assert.NotEmpty(t, public.QuotationNumber)
	require.Len(t, public.Items, 1)
	assert.InDelta(t, 25.0, public.Items[0].UnitPrice, 0.001)

	// Resolving counted as a client view
	reloaded, err := qsvc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusViewed, reloaded.Status)

	// Listing never returns raw tokens
	tokens, err := ssvc.List(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Empty(t, tokens[0].Token)
}

func TestShareService_DraftCannotBeShared(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	ssvc := createShareService(db, qsvc)
	ctx := quotationTestContext()

	dto := createDraftWithItem(t, db, qsvc, "Draft share")

	_, err := ssvc.Issue(ctx, dto.ID, &domain.ShareQuotationRequest{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestShareService_RevokedTokenStopsResolving(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	ssvc := createShareService(db, qsvc)
	ctx := quotationTestContext()

	dto := createDraftWithItem(t, db, qsvc, "Revoke test")
	_, err := qsvc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	issued, err := ssvc.Issue(ctx, dto.ID, &domain.ShareQuotationRequest{})
	require.NoError(t, err)

	require.NoError(t, ssvc.Revoke(ctx, dto.ID, issued.ID.String()))

	_, err = ssvc.Resolve(ctx, issued.Token)
	assert.ErrorIs(t, err, service.ErrShareTokenInvalid)
}

func TestShareService_GarbageTokensAllFailTheSameWay(t *testing.T) {
	db := setupQuotationTestDB(t)
	qsvc := createQuotationService(db)
	ssvc := createShareService(db, qsvc)
	ctx := quotationTestContext()

	for _, token := range []string{
		"",
		"not-a-jwt",
		"eyJhbGciOiJIUzI1NiJ9.e30.invalidsignature",
	} {
		_, err := ssvc.Resolve(ctx, token)
		assert.ErrorIs(t, err, service.ErrShareTokenInvalid, "token %q", token)
	}
}
