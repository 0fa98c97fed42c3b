package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lifecycle endpoints. Explicit transitions live next to their
// convenience wrappers (send, accept, reject); the status graph itself
// is enforced in the service layer.

// @Summary Update quotation status
// @Description Performs an explicit lifecycle transition. Disallowed edges return 422; terminal quotations return 409.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationStatusRequest true "Target status"
// @Success 200 {object} domain.QuotationDTO
// @Failure 422 {object} domain.APIError "Invalid transition"
// @Failure 409 {object} domain.APIError "Terminal status or concurrent modification"
// @Security BearerAuth
// @Router /quotations/{id}/status [put]
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update status", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Send quotation
// @Description Moves a draft to sent, issuing the quotation number, and delivers it to the client when mail is configured
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.SendQuotationRequest false "Send options"
// @Success 200 {object} domain.QuotationDTO
// @Failure 422 {object} domain.APIError "Quotation cannot be sent from its current status"
// @Security BearerAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.SendQuotationRequest
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

	quotation, err := h.quotationService.Send(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to send quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Accept quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationStatusRequest false "Notes and version"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/accept [post]
func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationStatusRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	quotation, err := h.quotationService.Accept(r.Context(), id, req.Notes, req.Version)
	if err != nil {
		h.logger.Error("failed to accept quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Reject quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.RejectQuotationRequest false "Rejection reason"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.RejectQuotationRequest
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

	quotation, err := h.quotationService.Reject(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to reject quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Get quotation status history
// @Description Returns the append-only transition trail, oldest first
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {array} domain.QuotationStatusHistoryDTO
// @Security BearerAuth
// @Router /quotations/{id}/history [get]
func (h *QuotationHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	history, err := h.quotationService.History(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get history", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// @Summary Add quotation item
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.CreateQuotationItemRequest true "Item data"
// @Success 201 {object} domain.QuotationMutationDTO
// @Security BearerAuth
// @Router /quotations/{id}/items [post]
func (h *QuotationHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.CreateQuotationItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.quotationService.AddItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add item", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// @Summary Update quotation item
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param itemId path string true "Item ID"
// @Param request body domain.UpdateQuotationItemRequest true "Item data"
// @Success 200 {object} domain.QuotationMutationDTO
// @Security BearerAuth
// @Router /quotations/{id}/items/{itemId} [put]
func (h *QuotationHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.quotationService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		h.logger.Error("failed to update item", zap.Error(err),
			zap.String("quotation_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Remove quotation item
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} domain.QuotationMutationDTO
// @Security BearerAuth
// @Router /quotations/{id}/items/{itemId} [delete]
func (h *QuotationHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	result, err := h.quotationService.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.logger.Error("failed to remove item", zap.Error(err),
			zap.String("quotation_id", id.String()), zap.String("item_id", itemID.String()))
		h.handleQuotationError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
