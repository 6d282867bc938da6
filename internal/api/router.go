// internal/api/router.go
package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"networth-ledger/internal/api/handler"
	"networth-ledger/internal/api/middleware"
	"networth-ledger/internal/ratelimit"
)

// LoginPath is the only /api path reachable without a token.
const LoginPath = "/api/user/login"

// RouterConfig carries the dependencies of the HTTP router.
type RouterConfig struct {
	AssetHandler   *handler.AssetHandler
	UserHandler    *handler.UserHandler
	Tokens         middleware.TokenVerifier
	Logger         zerolog.Logger
	RequestTimeout time.Duration

	// TrustedProxies are the peers whose forwarding headers identify the client.
	TrustedProxies []*net.IPNet

	// Metrics is optional; when nil no /metrics endpoint is served.
	Metrics     *middleware.Metrics
	MetricsPath string

	// LoginLimiter throttles login attempts per client IP; nil disables throttling.
	LoginLimiter ratelimit.Limiter
	LoginLimit   int
	LoginWindow  time.Duration
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = handler.DefaultTimeout
	}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticator(cfg.Tokens, cfg.Logger, LoginPath))

		r.Route("/user", func(r chi.Router) {
			r.With(middleware.RateLimitByIP(cfg.LoginLimiter, cfg.LoginLimit, cfg.LoginWindow, cfg.Metrics, cfg.Logger)).
				Post("/login", cfg.UserHandler.Login)
			r.Get("/list", cfg.UserHandler.List)
			r.Post("/create", cfg.UserHandler.Create)
			r.Post("/update", cfg.UserHandler.Update)
			r.Post("/change-status", cfg.UserHandler.ChangeStatus)
			r.Post("/delete", cfg.UserHandler.Delete)
		})

		r.Route("/asset", func(r chi.Router) {
			r.Get("/list", cfg.AssetHandler.List)
			r.Post("/create", cfg.AssetHandler.Create)
			r.Get("/last-items", cfg.AssetHandler.LastItems)
			r.Put("/{id}", cfg.AssetHandler.Update)
			r.Delete("/{id}", cfg.AssetHandler.Delete)
		})
	})

	return r
}
