package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// @Summary List pricing settings
// @Tags Settings
// @Produce json
// @Success 200 {array} domain.PricingSetting
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list settings", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// @Summary Get pricing setting
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} domain.PricingSetting
// @Security BearerAuth
// @Router /settings/{key} [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settingsService.Get(r.Context(), key)
	if err != nil {
		h.handleSettingsError(w, err, key)
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

// @Summary Set pricing setting
// @Description Creates or updates one pricing default. Numeric settings are validated at write time.
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body domain.UpdateSettingRequest true "Setting value"
// @Success 200 {object} domain.PricingSetting
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req domain.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	setting, err := h.settingsService.Set(r.Context(), key, &req)
	if err != nil {
		h.handleSettingsError(w, err, key)
		return
	}
	respondJSON(w, http.StatusOK, setting)
}

// @Summary Delete pricing setting
// @Tags Settings
// @Param key path string true "Setting key"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /settings/{key} [delete]
func (h *SettingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.settingsService.Delete(r.Context(), key); err != nil {
		h.handleSettingsError(w, err, key)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) handleSettingsError(w http.ResponseWriter, err error, key string) {
	if errors.Is(err, service.ErrInvalidInput) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("settings operation failed", zap.String("key", key), zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}
