package service_test

import (
	"testing"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/DR-Danke/Kompass-sub005/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createDraftWithItem(t *testing.T, db *gorm.DB, svc *service.QuotationService, title string) *domain.QuotationDTO {
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, title+" client")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        title,
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
		Items: []domain.CreateQuotationItemRequest{
			{ProductName: "Line item", Quantity: 10, UnitPrice: float64Ptr(25)},
		},
	})
	require.NoError(t, err)
	return dto
}

func TestQuotationService_Send_AssignsNumber(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Send test")

	sent, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, sent.Status)
	assert.Regexp(t, `^QT-\d{4}-\d{4}$`, sent.QuotationNumber)
	assert.NotNil(t, sent.SentAt)

	history, err := svc.History(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.QuotationStatusSent, history[0].ToStatus)
	require.NotNil(t, history[0].FromStatus)
	assert.Equal(t, domain.QuotationStatusDraft, *history[0].FromStatus)
	assert.Equal(t, "user-1", history[0].ChangedByID)
}

func TestQuotationService_Send_EmptyQuotation(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	client := testutil.CreateTestClient(t, db, "Empty sender")

	dto, err := svc.Create(ctx, &domain.CreateQuotationRequest{
		Title:        "Empty",
		ClientID:     client.ID,
		ExchangeRate: float64Ptr(4000),
	})
	require.NoError(t, err)

	_, err = svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuotationService_MarkViewed_Idempotent(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Viewed test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	viewed, err := svc.MarkViewed(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusViewed, viewed.Status)
	require.NotNil(t, viewed.ViewedAt)
	firstViewedAt := *viewed.ViewedAt

	// Further views neither fail nor restamp
	again, err := svc.MarkViewed(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusViewed, again.Status)
	require.NotNil(t, again.ViewedAt)
	assert.Equal(t, firstViewedAt, *again.ViewedAt)

	history, err := svc.History(ctx, dto.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "repeat views add no history rows")
}

func TestQuotationService_AcceptAndLock(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Accept test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, dto.ID, "deal agreed", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.DecidedAt)

	// Terminal statuses lock every mutation path
	_, err = svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{Notes: stringPtr("late edit")})
	assert.ErrorIs(t, err, service.ErrQuotationLocked)

	_, err = svc.UpdateStatus(ctx, dto.ID, &domain.UpdateQuotationStatusRequest{Status: domain.QuotationStatusSent})
	assert.ErrorIs(t, err, service.ErrQuotationLocked)

	_, err = svc.AddItem(ctx, dto.ID, &domain.CreateQuotationItemRequest{
		ProductName: "Late line", Quantity: 1, UnitPrice: float64Ptr(3),
	})
	assert.ErrorIs(t, err, service.ErrQuotationLocked)
}

func TestQuotationService_Reject(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Reject test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, dto.ID, &domain.RejectQuotationRequest{Reason: "price too high"})
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusRejected, rejected.Status)

	history, err := svc.History(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "price too high", history[1].Notes)
}

func TestQuotationService_InvalidTransition(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Transition test")

	// Drafts cannot be accepted directly
	_, err := svc.Accept(ctx, dto.ID, "", 0)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, dto.ID, &domain.UpdateQuotationStatusRequest{
		Status: domain.QuotationStatus("bogus"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuotationService_UpdateStatus_ExpiredIsSystemOnly(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Forced expiry test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{ValidityDays: 30})
	require.NoError(t, err)

	// The validity window is still open; expiry only happens when the
	// system notices the window has lapsed
	_, err = svc.UpdateStatus(ctx, dto.ID, &domain.UpdateQuotationStatusRequest{
		Status: domain.QuotationStatusExpired,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	read, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, read.Status)
}

func TestQuotationService_LazyExpiryOnRead(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Expiry test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	// Age the validity window behind the service's back
	past := time.Now().AddDate(0, 0, -2)
	require.NoError(t, db.Model(&domain.Quotation{}).
		Where("id = ?", dto.ID).
		Update("valid_until", past).Error)

	read, err := svc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, read.Status)

	history, err := svc.History(ctx, dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[len(history)-1]
	assert.Equal(t, domain.QuotationStatusExpired, last.ToStatus)
	assert.Equal(t, "system", last.ChangedByID)
}

func TestQuotationService_ExpireDue(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()

	past := time.Now().AddDate(0, 0, -1)
	for _, title := range []string{"Sweep A", "Sweep B"} {
		dto := createDraftWithItem(t, db, svc, title)
		_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
		require.NoError(t, err)
		require.NoError(t, db.Model(&domain.Quotation{}).
			Where("id = ?", dto.ID).
			Update("valid_until", past).Error)
	}
	// Drafts are non-terminal, so a stale draft expires too
	draft := createDraftWithItem(t, db, svc, "Sweep draft")
	require.NoError(t, db.Model(&domain.Quotation{}).
		Where("id = ?", draft.ID).
		Update("valid_until", past).Error)

	expired, err := svc.ExpireDue(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, expired)

	swept, err := svc.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, swept.Status)
	assert.Empty(t, swept.QuotationNumber, "expiring a draft does not issue a number")
}

func TestQuotationService_MutationWarningAfterSend(t *testing.T) {
	db := setupQuotationTestDB(t)
	svc := createQuotationService(db)
	ctx := quotationTestContext()
	dto := createDraftWithItem(t, db, svc, "Warning test")

	_, err := svc.Send(ctx, dto.ID, &domain.SendQuotationRequest{})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, dto.ID, &domain.UpdateQuotationRequest{
		Notes: stringPtr("post-send tweak"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Warning)

	item, err := svc.AddItem(ctx, dto.ID, &domain.CreateQuotationItemRequest{
		ProductName: "Extra line", Quantity: 2, UnitPrice: float64Ptr(7),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.Warning)
	assert.Len(t, item.Quotation.Items, 2)
}
