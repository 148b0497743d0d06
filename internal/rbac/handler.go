package rbac

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/orokiipay/orokiipay/internal/audit"
	"github.com/orokiipay/orokiipay/internal/platform/httpx"
	"github.com/orokiipay/orokiipay/internal/shared"
)

// Handler exposes the RBAC API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	auditSvc *audit.Service
	rbac     Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auditSvc *audit.Service, rbac Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		auditSvc: auditSvc,
		rbac:     rbac,
		validate: validator.New(),
	}
}

// MountRoutes registers RBAC routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.getPermissions)
	r.Get("/available-features", h.getAvailableFeatures)
	r.Get("/role-based-metrics", h.getRoleBasedMetrics)
	r.Post("/check-permission", h.checkPermission)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("role_management", LevelRead))
		r.Get("/roles", h.listRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("role_management", LevelWrite))
		r.Post("/assign-role", h.assignRole)
		r.Delete("/remove-role", h.removeRole)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission("audit_trail_access", LevelRead))
		r.Get("/audit-trail", h.auditTrail)
	})
}

// getPermissions returns the caller's resolved snapshot.
func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	roles := make([]map[string]string, 0, len(rc.Roles))
	for _, role := range rc.Roles {
		roles = append(roles, map[string]string{
			"roleCode": role.RoleCode,
			"roleName": role.RoleName,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"permissions": rc.Permissions,
		"roles":       roles,
		"isAdmin":     rc.IsAdmin,
	})
}

func (h *Handler) getAvailableFeatures(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	features, err := h.service.AvailableFeatures(r.Context(), id.TenantID, id.UserID, id.LegacyRole)
	if err != nil {
		h.logger.Error("available features", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to load available features", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"features": features,
	})
}

func (h *Handler) getRoleBasedMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	metrics, err := h.service.RoleBasedMetrics(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		h.logger.Error("role based metrics", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to load metrics", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"metrics": metrics,
	})
}

type checkPermissionRequest struct {
	PermissionCode string  `json:"permissionCode" validate:"required"`
	ResourceID     *string `json:"resourceId"`
}

func (h *Handler) checkPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req checkPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "permissionCode is required", nil)
		return
	}
	allowed, err := h.service.CheckUserPermission(r.Context(), id.TenantID, id.UserID, req.PermissionCode, req.ResourceID)
	if err != nil {
		h.logger.Error("check permission", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Permission check failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"hasPermission": allowed,
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	roles, err := h.service.ListRoles(r.Context(), id.TenantID)
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to load roles", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"roles":   roles,
	})
}

type assignRoleRequest struct {
	UserID        string `json:"userId" validate:"required"`
	RoleCode      string `json:"roleCode" validate:"required"`
	Reason        string `json:"reason"`
	EffectiveFrom string `json:"effectiveFrom" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EffectiveTo   string `json:"effectiveTo" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "userId and roleCode are required; effective dates must be RFC3339", nil)
		return
	}
	effectiveFrom := parseTimePtr(req.EffectiveFrom)
	effectiveTo := parseTimePtr(req.EffectiveTo)
	if err := h.service.AssignRole(r.Context(), id.TenantID, req.UserID, req.RoleCode, id.UserID, req.Reason, effectiveFrom, effectiveTo); err != nil {
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to assign role", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Role assigned",
	})
}

type removeRoleRequest struct {
	UserID   string `json:"userId" validate:"required"`
	RoleCode string `json:"roleCode" validate:"required"`
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req removeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "userId and roleCode are required", nil)
		return
	}
	if err := h.service.RemoveRole(r.Context(), id.TenantID, req.UserID, req.RoleCode); err != nil {
		h.logger.Error("remove role", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to remove role", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Role removed",
	})
}

func (h *Handler) auditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}
	filters := audit.TrailFilters{
		TenantID:   id.TenantID,
		UserID:     r.URL.Query().Get("userId"),
		DeniedOnly: r.URL.Query().Get("deniedOnly") == "true",
		Page:       queryInt(r, "page"),
		PageSize:   queryInt(r, "pageSize"),
	}
	if from := parseTimePtr(r.URL.Query().Get("from")); from != nil {
		filters.From = *from
	}
	if to := parseTimePtr(r.URL.Query().Get("to")); to != nil {
		filters.To = *to
	}
	result, err := h.auditSvc.Trail(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit trail", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to load audit trail", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"audit":   result,
	})
}

// identity enforces an authenticated caller for self-serve endpoints.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*shared.Identity, bool) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required", nil)
		return nil, false
	}
	return id, true
}

// snapshot returns the request's loaded RBAC state.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (ResolvedContext, bool) {
	if _, ok := h.identity(w, r); !ok {
		return ResolvedContext{}, false
	}
	state := StateFromContext(r.Context())
	if state == nil || state.Kind != StateLoaded {
		httpx.Error(w, http.StatusInternalServerError, "RBAC not initialized", nil)
		return ResolvedContext{}, false
	}
	return state.Context, true
}

func parseTimePtr(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
