package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dashfin/finmirror/internal/adapter/http/handler"
	"github.com/dashfin/finmirror/internal/adapter/http/middleware"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RecordHandler *handler.RecordHandler
	StatsHandler  *handler.StatsHandler
	EditorHandler *handler.EditorHandler
	HealthHandler *handler.HealthHandler
	TokenVerifier *auth.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	Logger        zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Use(middleware.Identity(cfg.TokenVerifier))

		// Mirrored records
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.RecordHandler.List)
			r.Post("/", cfg.RecordHandler.Create)
			r.Put("/{id}", cfg.RecordHandler.Update)
			r.Delete("/{id}", cfg.RecordHandler.Delete)
		})

		// Derived views
		r.Get("/stats", cfg.StatsHandler.Totals)
		r.Get("/chart", cfg.StatsHandler.Chart)

		// Edit session
		r.Route("/editor", func(r chi.Router) {
			r.Get("/", cfg.EditorHandler.State)
			r.Post("/create", cfg.EditorHandler.OpenCreate)
			r.Post("/edit/{id}", cfg.EditorHandler.OpenEdit)
			r.Patch("/field", cfg.EditorHandler.SetField)
			r.Post("/submit", cfg.EditorHandler.Submit)
			r.Post("/cancel", cfg.EditorHandler.Cancel)
		})
	})

	return r
}
