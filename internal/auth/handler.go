package auth

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/orokiipay/orokiipay/internal/platform/httpx"
	"github.com/orokiipay/orokiipay/internal/shared"
)

// Handler exposes login and logout.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.sessions.Issue(r.Context(), shared.Identity{
		TenantID:   user.TenantID,
		UserID:     user.ID,
		LegacyRole: user.Role,
	})
	if err != nil {
		h.logger.Error("issue session", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to create session", nil)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"token":    token,
		"tenantId": user.TenantID,
		"userId":   user.ID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := shared.BearerToken(r)
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.logger.Warn("revoke session", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
