package app

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/orokiipay/orokiipay/internal/observability"
	"github.com/orokiipay/orokiipay/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics
}

// MiddlewareStack installs the OrokiiPay middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	rateLimit := 300
	if cfg.Config != nil && cfg.Config.RateLimitPerMinute > 0 {
		rateLimit = cfg.Config.RateLimitPerMinute
	}

	// Resolves the bearer token to an identity. Requests without a valid
	// token pass through unauthenticated; guards downstream decide
	// whether that matters.
	identityMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := shared.BearerToken(r)
			if token == "" || cfg.SessionManager == nil {
				next.ServeHTTP(w, r)
				return
			}
			id, err := cfg.SessionManager.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, shared.ErrSessionNotFound) && cfg.Logger != nil {
					cfg.Logger.Error("resolve session", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
		})
	}

	return []func(http.Handler) http.Handler{
		cfg.Metrics.Middleware,
		secureMiddleware.Handler,
		httprate.LimitByIP(rateLimit, time.Minute),
		identityMiddleware,
	}
}
