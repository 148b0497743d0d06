package navigation

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/orokiipay/orokiipay/internal/platform/httpx"
	"github.com/orokiipay/orokiipay/internal/rbac"
	"github.com/orokiipay/orokiipay/internal/shared"
)

// Handler serves the role-filtered navigation menu.
type Handler struct {
	logger *slog.Logger
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.getNavigation)
}

func (h *Handler) getNavigation(w http.ResponseWriter, r *http.Request) {
	if shared.IdentityFromContext(r.Context()) == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	state := rbac.StateFromContext(r.Context())
	if state == nil || state.Kind != rbac.StateLoaded {
		httpx.Error(w, http.StatusInternalServerError, "RBAC not initialized", nil)
		return
	}

	// The menu keys off the primary (most senior) role, mirroring the
	// single-role prop the mobile client renders with.
	primaryRole := ""
	if len(state.Context.Roles) > 0 {
		primaryRole = state.Context.Roles[0].RoleCode
	}

	groups := Grouped(primaryRole, state.Context.Permissions)
	if groups == nil {
		groups = []Group{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"role":       primaryRole,
		"navigation": groups,
	})
}
