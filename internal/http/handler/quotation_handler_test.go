package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleQuotationError_StatusMapping(t *testing.T) {
	h := &QuotationHandler{logger: zap.NewNop()}

	tests := []struct {
		name     string
		err      error
		status   int
		errType  string
	}{
		{"quotation not found", service.ErrQuotationNotFound, http.StatusNotFound, domain.ErrorTypeNotFound},
		{"client not found", service.ErrClientNotFound, http.StatusNotFound, domain.ErrorTypeNotFound},
		{"invalid transition", service.ErrInvalidTransition, http.StatusUnprocessableEntity, domain.ErrorTypeUnprocessable},
		{"terminal lock", service.ErrQuotationLocked, http.StatusConflict, domain.ErrorTypeConflict},
		{"version conflict", service.ErrConcurrentModification, http.StatusConflict, domain.ErrorTypeConflict},
		{"rate lookup timeout", service.ErrRateLookupTimeout, http.StatusGatewayTimeout, domain.ErrorTypeTimeout},
		{"freight lookup timeout", service.ErrFreightLookupTimeout, http.StatusGatewayTimeout, domain.ErrorTypeTimeout},
		{"no rate available", service.ErrRateUnavailable, http.StatusBadRequest, domain.ErrorTypeBadRequest},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest, domain.ErrorTypeBadRequest},
		{"unknown error", fmt.Errorf("database exploded"), http.StatusInternalServerError, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handleQuotationError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var apiErr domain.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, tt.errType, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestHandleQuotationError_WrappedSentinels(t *testing.T) {
	h := &QuotationHandler{logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.handleQuotationError(rec, fmt.Errorf("loading quotation: %w", service.ErrQuotationNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
