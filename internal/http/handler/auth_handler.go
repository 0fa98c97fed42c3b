package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/DR-Danke/Kompass-sub005/internal/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo    *repository.UserRepository
	tokenIssuer *auth.TokenIssuer
	logger      *zap.Logger
}

func NewAuthHandler(userRepo *repository.UserRepository, tokenIssuer *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		tokenIssuer: tokenIssuer,
		logger:      logger,
	}
}

// @Summary Get current authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Keep the local user record in sync with the token claims
	user := &domain.User{
		ID:          userCtx.UserID,
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       pq.StringArray(userCtx.Roles),
		IsActive:    true,
	}
	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user", zap.Error(err))
	}
	if err := h.userRepo.TouchLastLogin(r.Context(), userCtx.UserID); err != nil {
		h.logger.Warn("failed to record login", zap.Error(err))
	}

	respondJSON(w, http.StatusOK, domain.AuthUserDTO{
		ID:    userCtx.UserID,
		Name:  userCtx.DisplayName,
		Email: userCtx.Email,
		Roles: userCtx.Roles,
	})
}

// @Summary Issue service token
// @Description Mints a signed token for service integrations. Admin only.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.IssueTokenRequest true "Token subject and roles"
// @Success 201 {object} domain.TokenResponse
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/tokens [post]
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	token, expiresAt, err := h.tokenIssuer.Issue(req.Subject, req.Name, req.Email, req.Roles)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	h.logger.Info("service token issued",
		zap.String("subject", req.Subject),
		zap.String("issued_by", auth.ActorID(r.Context())))

	respondJSON(w, http.StatusCreated, domain.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// @Summary List users
// @Tags Auth
// @Produce json
// @Success 200 {array} domain.User
// @Security BearerAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}
