package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	exportService    *service.ExportService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, exportService *service.ExportService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		exportService:    exportService,
		logger:           logger,
	}
}

// @Summary List quotations
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param clientId query string false "Filter by client ID"
// @Param status query string false "Filter by status" Enums(draft, sent, viewed, negotiating, accepted, rejected, expired)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var clientID *uuid.UUID
	if cid := r.URL.Query().Get("clientId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
			return
		}
		clientID = &id
	}

	var status *domain.QuotationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.QuotationStatus(s)
		if !st.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &st
	}

	quotations, total, err := h.quotationService.List(r.Context(), page, pageSize, clientID, status)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       quotations,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// @Summary Search quotations
// @Tags Quotations
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Result limit" default(20)
// @Success 200 {array} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/search [get]
func (h *QuotationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	quotations, err := h.quotationService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search quotations", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotations)
}

// @Summary Create quotation
// @Description Creates a new draft quotation with optional initial items. Totals are computed on creation.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 404 {object} domain.APIError "Client not found"
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quotation", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// @Summary Get quotation
// @Description Returns one quotation with its items. A quotation past its validity window is observed as expired.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Update quotation
// @Description Updates header fields and recomputes totals. Carries a warning when the quotation was already sent.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationRequest true "Quotation data"
// @Success 200 {object} domain.QuotationMutationDTO
// @Failure 409 {object} domain.APIError "Locked or concurrently modified"
// @Security BearerAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Delete quotation
// @Description Deletes a draft quotation. Quotations that were sent cannot be deleted.
// @Tags Quotations
// @Param id path string true "Quotation ID"
// @Success 204 "No Content"
// @Failure 409 {object} domain.APIError "Quotation is not a draft"
// @Security BearerAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Duplicate quotation
// @Description Copies a quotation into a fresh draft with no number and no history
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.DuplicateQuotationRequest false "Duplicate options"
// @Success 201 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/duplicate [post]
func (h *QuotationHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.DuplicateQuotationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	quotation, err := h.quotationService.Duplicate(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to duplicate quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// @Summary Refresh national costs
// @Description Looks up current national freight and nationalization figures from the freight rates warehouse
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationMutationDTO
// @Failure 504 {object} domain.APIError "Freight rate lookup timed out"
// @Security BearerAuth
// @Router /quotations/{id}/refresh-national-costs [post]
func (h *QuotationHandler) RefreshNationalCosts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	result, err := h.quotationService.RefreshNationalCosts(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to refresh national costs", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Export quotation as CSV
// @Tags Quotations
// @Produce text/csv
// @Param id path string true "Quotation ID"
// @Success 200 {string} string "CSV content"
// @Security BearerAuth
// @Router /quotations/{id}/export [get]
func (h *QuotationHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	content, filename, err := h.exportService.ExportCSV(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to export quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// @Summary Archive a quotation export
// @Description Renders the quotation as CSV and stores a snapshot in blob storage
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 201 {object} map[string]string "Storage path of the archived snapshot"
// @Security BearerAuth
// @Router /quotations/{id}/export [post]
func (h *QuotationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	path, err := h.exportService.Archive(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to archive quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// @Summary Recalculate a quotation
// @Description Runs the pricing engine over a stored quotation without saving. Persisted totals change only on an explicit update.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.CalculateQuotationRequest false "Optional rate and margin overrides"
// @Success 200 {object} pricing.Quote
// @Failure 404 {object} domain.APIError "Quotation not found"
// @Security BearerAuth
// @Router /quotations/{id}/calculate [post]
func (h *QuotationHandler) CalculateQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	// The body is optional; an empty body previews the stored inputs
	var req domain.CalculateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quotationService.CalculateForQuotation(r.Context(), id, &req)
	if err != nil {
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// @Summary Calculate ad-hoc pricing
// @Description Runs the pricing engine over arbitrary lines without persisting anything
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CalculateRequest true "Calculation input"
// @Success 200 {object} pricing.Quote
// @Failure 400 {object} domain.APIError "Invalid input or amount out of range"
// @Failure 504 {object} domain.APIError "Exchange rate lookup timed out"
// @Security BearerAuth
// @Router /quotations/calculate [post]
func (h *QuotationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quotationService.Calculate(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to calculate", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// handleQuotationError maps service sentinels onto HTTP statuses.
// Locked and concurrent modification are both conflicts; dependency
// timeouts surface as gateway timeouts so clients can retry.
func (h *QuotationHandler) handleQuotationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuotationNotFound):
		respondWithError(w, http.StatusNotFound, "Quotation not found")
	case errors.Is(err, service.ErrClientNotFound):
		respondWithError(w, http.StatusNotFound, "Client not found")
	case errors.Is(err, service.ErrProductNotFound):
		respondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, "Quotation item not found")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrQuotationLocked):
		respondWithError(w, http.StatusConflict, "Quotation is in a terminal status and cannot be modified")
	case errors.Is(err, service.ErrConcurrentModification):
		respondWithError(w, http.StatusConflict, "Quotation was modified by someone else; reload and retry")
	case errors.Is(err, service.ErrRateLookupTimeout), errors.Is(err, service.ErrFreightLookupTimeout):
		respondWithError(w, http.StatusGatewayTimeout, "Upstream rate lookup timed out; try again")
	case errors.Is(err, service.ErrRateUnavailable):
		respondWithError(w, http.StatusBadRequest, "No exchange rate available; provide one explicitly")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
