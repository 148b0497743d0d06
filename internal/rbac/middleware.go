package rbac

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/orokiipay/orokiipay/internal/audit"
	"github.com/orokiipay/orokiipay/internal/platform/httpx"
	"github.com/orokiipay/orokiipay/internal/shared"
)

// StateKind distinguishes "context never loaded" from "context load
// failed" so operators can tell outages apart from unauthenticated
// traffic. Guards treat both as a wiring error, never as an allow.
type StateKind int

const (
	// StateNotLoaded means Load never ran for this request.
	StateNotLoaded StateKind = iota
	// StateLoadFailed means Load ran but the store query failed.
	StateLoadFailed
	// StateLoaded means a snapshot is attached.
	StateLoaded
)

// State is the per-request RBAC snapshot with its load outcome.
type State struct {
	Kind    StateKind
	Context ResolvedContext
}

type stateContextKey struct{}

// ContextWithState stores the RBAC state in context.
func ContextWithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateContextKey{}, state)
}

// StateFromContext extracts the RBAC state from context.
func StateFromContext(ctx context.Context) *State {
	state, _ := ctx.Value(stateContextKey{}).(*State)
	return state
}

// Auditor records permission decisions.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

// DecisionObserver counts guard outcomes for metrics.
type DecisionObserver interface {
	ObserveDecision(outcome string)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service  *Service
	Audit    Auditor
	Observer DecisionObserver
	Logger   *slog.Logger
}

// Load resolves the caller's snapshot once per request. Unauthenticated
// requests pass through without a state. A resolver failure degrades to
// StateLoadFailed instead of failing the request; downstream guards turn
// that into a 500, never into an allow.
func (m Middleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := shared.IdentityFromContext(r.Context())
		if id == nil {
			next.ServeHTTP(w, r)
			return
		}

		rc, err := m.Service.ResolveContext(r.Context(), id.TenantID, id.UserID, id.LegacyRole)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("rbac load",
					slog.String("tenant", id.TenantID),
					slog.String("user", id.UserID),
					slog.Any("error", err))
			}
			ctx := ContextWithState(r.Context(), &State{Kind: StateLoadFailed})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx := ContextWithState(r.Context(), &State{Kind: StateLoaded, Context: rc})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission ensures the caller meets the level threshold for one
// permission code. Authority roles bypass the check.
func (m Middleware) RequirePermission(code string, level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := m.requireState(w, r)
			if !ok {
				return
			}

			decision := Evaluate(rc, Requirement{
				AnyOfCodes:  []string{code},
				MinLevel:    level,
				BypassAdmin: true,
			})
			if decision.Allowed {
				m.observe(decision)
				next.ServeHTTP(w, r)
				return
			}

			m.deny(r, rc, code, decision.Reason)
			if decision.CurrentLevel.Grants() {
				httpx.Error(w, http.StatusForbidden,
					"Insufficient permission level. Required: "+string(level)+", Current: "+string(decision.CurrentLevel),
					map[string]any{
						"requiredPermission": code,
						"requiredLevel":      level,
						"currentLevel":       decision.CurrentLevel,
					})
				return
			}
			httpx.Error(w, http.StatusForbidden,
				"Access denied. Required permission: "+code,
				map[string]any{
					"requiredPermission": code,
					"requiredLevel":      level,
				})
		})
	}
}

// RequireAnyPermission allows the request when the caller meets the level
// threshold on any one of the codes.
func (m Middleware) RequireAnyPermission(codes []string, level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := m.requireState(w, r)
			if !ok {
				return
			}

			decision := Evaluate(rc, Requirement{
				AnyOfCodes:  codes,
				MinLevel:    level,
				BypassAdmin: true,
			})
			if decision.Allowed {
				m.observe(decision)
				next.ServeHTTP(w, r)
				return
			}

			m.deny(r, rc, strings.Join(codes, ","), decision.Reason)
			httpx.Error(w, http.StatusForbidden,
				"Access denied. Required any of: "+strings.Join(codes, ", "),
				map[string]any{
					"requiredPermissions": codes,
					"requiredLevel":       level,
				})
		})
	}
}

// RequireRole allows the request when the caller holds any of the given
// roles. Permission levels are ignored and there is no authority bypass.
func (m Middleware) RequireRole(roleCodes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := m.requireState(w, r)
			if !ok {
				return
			}

			decision := Evaluate(rc, Requirement{AnyOfRoles: roleCodes})
			if decision.Allowed {
				m.observe(decision)
				next.ServeHTTP(w, r)
				return
			}

			m.deny(r, rc, strings.Join(roleCodes, ","), "Required role not held")
			httpx.Error(w, http.StatusForbidden,
				"Access denied. Required role: "+strings.Join(roleCodes, " or "),
				map[string]any{
					"requiredRoles": roleCodes,
					"userRoles":     roleCodeList(rc),
				})
		})
	}
}

// RequireAdmin allows only callers holding an authority role.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := m.requireState(w, r)
			if !ok {
				return
			}

			if rc.IsAdmin {
				m.observe(Decision{Allowed: true, Bypassed: true})
				next.ServeHTTP(w, r)
				return
			}

			m.deny(r, rc, "admin", "Admin access required")
			httpx.Error(w, http.StatusForbidden, "Admin access required", map[string]any{
				"userRoles": roleCodeList(rc),
			})
		})
	}
}

// requireState enforces the guard prerequisites: an authenticated caller
// and a loaded snapshot. Missing context is a wiring error (500), not a
// denial.
func (m Middleware) requireState(w http.ResponseWriter, r *http.Request) (ResolvedContext, bool) {
	if shared.IdentityFromContext(r.Context()) == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required", nil)
		return ResolvedContext{}, false
	}

	state := StateFromContext(r.Context())
	if state == nil || state.Kind != StateLoaded {
		if m.Logger != nil {
			if state != nil && state.Kind == StateLoadFailed {
				m.Logger.Error("rbac guard reached with failed context load", slog.String("path", r.URL.Path))
			} else {
				m.Logger.Error("rbac guard reached before context load", slog.String("path", r.URL.Path))
			}
		}
		httpx.Error(w, http.StatusInternalServerError, "RBAC not initialized", nil)
		return ResolvedContext{}, false
	}
	return state.Context, true
}

func (m Middleware) deny(r *http.Request, rc ResolvedContext, permissionCode, reason string) {
	if m.Observer != nil {
		m.Observer.ObserveDecision("denied")
	}
	if m.Audit == nil {
		return
	}
	m.Audit.Record(r.Context(), audit.Entry{
		TenantID:       rc.TenantID,
		UserID:         rc.UserID,
		Resource:       r.URL.Path,
		Action:         r.Method,
		PermissionCode: permissionCode,
		AccessGranted:  false,
		DenialReason:   reason,
		RequestContext: map[string]string{
			"ip":        clientIP(r),
			"userAgent": r.UserAgent(),
		},
	})
}

func (m Middleware) observe(decision Decision) {
	if m.Observer == nil {
		return
	}
	if decision.Bypassed {
		m.Observer.ObserveDecision("bypass")
		return
	}
	m.Observer.ObserveDecision("allowed")
}

func roleCodeList(rc ResolvedContext) []string {
	codes := make([]string, 0, len(rc.Roles))
	for _, role := range rc.Roles {
		codes = append(codes, role.RoleCode)
	}
	return codes
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	return r.RemoteAddr
}
