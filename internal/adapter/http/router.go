package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/finledger/internal/adapter/http/handler"
	"github.com/iho/finledger/internal/adapter/http/middleware"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger           zerolog.Logger
	StatementHandler *handler.StatementHandler
	TransferHandler  *handler.TransferHandler
	UserHandler      *handler.UserHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	TokenVerifier    middleware.TokenVerifier

	// Optional
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	AuthRateLimiter    *middleware.RateLimiter
	Metrics            *metrics.Metrics
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites those headers,
	// otherwise clients can pick their own rate limit bucket.
	TrustProxyHeaders bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Recovery(cfg.Logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	var idempotency func(http.Handler) http.Handler
	if cfg.IdempotencyStore != nil {
		idempotency = middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).
			WithMetrics(cfg.Metrics).
			Wrap
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)

		// Credentials; never cached, a replayed session would hand out its token
		r.Group(func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter.Limit)
			}

			r.Post("/users", cfg.UserHandler.Create)
			r.Post("/sessions", cfg.UserHandler.Login)
		})

		// Authenticated; idempotency keys are scoped to the user
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			if idempotency != nil {
				r.Use(idempotency)
			}

			r.Get("/profile", cfg.UserHandler.Profile)

			r.Route("/statements", func(r chi.Router) {
				r.Post("/deposit", cfg.StatementHandler.Deposit)
				r.Post("/withdraw", cfg.StatementHandler.Withdraw)
				r.Post("/transfers/{user_id}", cfg.TransferHandler.Create)
				r.Get("/balance", cfg.StatementHandler.Balance)
				r.Get("/{statement_id}", cfg.StatementHandler.Get)
			})
		})
	})

	return r
}
