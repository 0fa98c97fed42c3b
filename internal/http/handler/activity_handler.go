package handler

import (
	"net/http"
	"strconv"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// @Summary Get recent activities
// @Tags Activities
// @Produce json
// @Param limit query int false "Result limit" default(20)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /activities [get]
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to get recent activities", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

// @Summary Get activities for an entity
// @Tags Activities
// @Produce json
// @Param targetType path string true "Target type" Enums(Quotation, Client, Product, Supplier)
// @Param targetId path string true "Target entity ID"
// @Param limit query int false "Result limit" default(20)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /activities/{targetType}/{targetId} [get]
func (h *ActivityHandler) GetByTarget(w http.ResponseWriter, r *http.Request) {
	targetType := domain.ActivityTargetType(chi.URLParam(r, "targetType"))
	switch targetType {
	case domain.ActivityTargetQuotation, domain.ActivityTargetClient,
		domain.ActivityTargetProduct, domain.ActivityTargetSupplier:
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid target type")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "targetId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID: must be a valid UUID")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.GetByTarget(r.Context(), targetType, targetID, limit)
	if err != nil {
		h.logger.Error("failed to get activities by target", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
