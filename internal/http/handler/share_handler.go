package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShareHandler struct {
	shareService *service.ShareService
	logger       *zap.Logger
}

func NewShareHandler(shareService *service.ShareService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// @Summary Issue share link
// @Description Issues a signed public link for a quotation. The raw token only appears in this response.
// @Tags Sharing
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.ShareQuotationRequest false "Share options"
// @Success 201 {object} domain.ShareTokenDTO
// @Security BearerAuth
// @Router /quotations/{id}/share [post]
func (h *ShareHandler) Issue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.ShareQuotationRequest
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

	token, err := h.shareService.Issue(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to issue share link", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleShareError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, token)
}

// @Summary List share links
// @Description Lists share links issued for a quotation; raw tokens are never included
// @Tags Sharing
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {array} domain.ShareTokenDTO
// @Security BearerAuth
// @Router /quotations/{id}/share [get]
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	tokens, err := h.shareService.List(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list share links", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleShareError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tokens)
}

// @Summary Revoke share link
// @Tags Sharing
// @Param id path string true "Quotation ID"
// @Param tokenId path string true "Share token identifier"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /quotations/{id}/share/{tokenId} [delete]
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}
	tokenID := chi.URLParam(r, "tokenId")
	if tokenID == "" {
		respondWithError(w, http.StatusBadRequest, "Token ID is required")
		return
	}

	if err := h.shareService.Revoke(r.Context(), id, tokenID); err != nil {
		h.logger.Error("failed to revoke share link", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleShareError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Resolve public share link
// @Description Public endpoint: validates a share token and returns the client-facing view of the quotation. Counts as a view.
// @Tags Sharing
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} domain.PublicQuotationDTO
// @Failure 404 {object} domain.APIError "Unknown, expired or revoked link"
// @Router /public/quotations/{token} [get]
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	quotation, err := h.shareService.Resolve(r.Context(), token)
	if err != nil {
		// All token failure modes collapse to 404 so the endpoint
		// cannot be used to probe token state.
		if errors.Is(err, service.ErrShareTokenInvalid) {
			respondWithError(w, http.StatusNotFound, "Not found")
			return
		}
		h.logger.Error("failed to resolve share link", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

func (h *ShareHandler) handleShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuotationNotFound):
		respondWithError(w, http.StatusNotFound, "Quotation not found")
	case errors.Is(err, service.ErrShareTokenInvalid):
		respondWithError(w, http.StatusNotFound, "Share link not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
