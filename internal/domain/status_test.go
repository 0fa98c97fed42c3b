package domain_test

import (
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestQuotationStatusIsValid(t *testing.T) {
	valid := []domain.QuotationStatus{
		domain.QuotationStatusDraft,
		domain.QuotationStatusSent,
		domain.QuotationStatusViewed,
		domain.QuotationStatusNegotiating,
		domain.QuotationStatusAccepted,
		domain.QuotationStatusRejected,
		domain.QuotationStatusExpired,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}

	assert.False(t, domain.QuotationStatus("pending").IsValid())
	assert.False(t, domain.QuotationStatus("").IsValid())
	assert.False(t, domain.QuotationStatus("DRAFT").IsValid())
}

func TestQuotationStatusTransitions(t *testing.T) {
	tests := []struct {
		from    domain.QuotationStatus
		to      domain.QuotationStatus
		allowed bool
	}{
		{domain.QuotationStatusDraft, domain.QuotationStatusSent, true},
		{domain.QuotationStatusDraft, domain.QuotationStatusAccepted, false},
		{domain.QuotationStatusDraft, domain.QuotationStatusViewed, false},
		{domain.QuotationStatusSent, domain.QuotationStatusViewed, true},
		{domain.QuotationStatusSent, domain.QuotationStatusNegotiating, true},
		{domain.QuotationStatusSent, domain.QuotationStatusAccepted, true},
		{domain.QuotationStatusSent, domain.QuotationStatusRejected, true},
		{domain.QuotationStatusSent, domain.QuotationStatusDraft, false},
		{domain.QuotationStatusViewed, domain.QuotationStatusAccepted, true},
		{domain.QuotationStatusViewed, domain.QuotationStatusSent, false},
		{domain.QuotationStatusNegotiating, domain.QuotationStatusSent, true},
		{domain.QuotationStatusNegotiating, domain.QuotationStatusAccepted, true},
		{domain.QuotationStatusAccepted, domain.QuotationStatusRejected, false},
		{domain.QuotationStatusRejected, domain.QuotationStatusDraft, false},
		{domain.QuotationStatusExpired, domain.QuotationStatusSent, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestQuotationStatusTerminalStatesHaveNoExits(t *testing.T) {
	all := []domain.QuotationStatus{
		domain.QuotationStatusDraft,
		domain.QuotationStatusSent,
		domain.QuotationStatusViewed,
		domain.QuotationStatusNegotiating,
		domain.QuotationStatusAccepted,
		domain.QuotationStatusRejected,
		domain.QuotationStatusExpired,
	}

	for _, from := range all {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range all {
			assert.False(t, from.CanTransitionTo(to), "terminal %s must not reach %s", from, to)
		}
	}
}

func TestQuotationStatusMutationRules(t *testing.T) {
	assert.True(t, domain.QuotationStatusDraft.AllowsItemMutation())
	assert.False(t, domain.QuotationStatusDraft.MutationWarning())

	for _, s := range []domain.QuotationStatus{domain.QuotationStatusSent, domain.QuotationStatusViewed, domain.QuotationStatusNegotiating} {
		assert.True(t, s.AllowsItemMutation(), "%s", s)
		assert.True(t, s.MutationWarning(), "%s", s)
	}

	for _, s := range []domain.QuotationStatus{domain.QuotationStatusAccepted, domain.QuotationStatusRejected, domain.QuotationStatusExpired} {
		assert.False(t, s.AllowsItemMutation(), "%s", s)
		assert.False(t, s.MutationWarning(), "%s", s)
	}
}
