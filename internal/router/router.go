// Package router wires handlers and middleware into the HTTP route tree.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/formapi/formapi/internal/cache"
	"github.com/formapi/formapi/internal/handler"
	"github.com/formapi/formapi/internal/metrics"
	"github.com/formapi/formapi/internal/middleware"
	"github.com/formapi/formapi/internal/service"
	"github.com/formapi/formapi/internal/store"
)

// Options carries the HTTP-level settings.
type Options struct {
	IsDevelopment  bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	RateLimit      bool
	RateLimitRPS   int
	RateLimitBurst int
	// URISet reports whether the store connection string came from the
	// environment rather than the built-in default.
	URISet bool
}

// Deps are the components the routes serve.
type Deps struct {
	Logger  *slog.Logger
	Store   store.Store
	Forms   *service.FormService
	// Cache is nil when Redis is not configured.
	Cache *cache.Cache
	// Metrics is nil when /metrics is disabled.
	Metrics *metrics.InMemoryRecorder
	Options Options
}

// New builds the router.
func New(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		cacheCheck handler.HealthChecker
		limiter    middleware.IPLimiter
		recorder   metrics.Recorder = metrics.NewNoop()
	)
	if d.Cache != nil {
		cacheCheck = d.Cache
		limiter = d.Cache
	}
	if d.Metrics != nil {
		recorder = d.Metrics
	}

	statusH := handler.NewStatusHandler(d.Store, d.Options.URISet, d.Metrics != nil)
	healthH := handler.NewHealthHandler(d.Store.Info().Driver, d.Store, cacheCheck)
	formH := handler.NewFormHandler(d.Forms, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.Options.IsDevelopment}))
	r.Use(middleware.CORS(d.Options.CORS))
	r.Use(middleware.MaxBodySize(d.Options.MaxBodySize))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Status and probes answer even while the store is down.
	r.Get("/", statusH.Status)
	r.Get("/healthz", healthH.Healthz)
	r.Get("/readyz", healthH.Readyz)
	if d.Metrics != nil {
		r.Get("/metrics", handler.NewMetricsHandler(d.Metrics, d.Store).Metrics)
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Metrics: recorder,
		Enabled: d.Options.RateLimit && limiter != nil,
		RPS:     d.Options.RateLimitRPS,
		Burst:   d.Options.RateLimitBurst,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Use(middleware.RequireStore(d.Store, logger))

		r.Get("/", statusH.Index)

		r.Route("/form", func(r chi.Router) {
			r.Get("/", formH.List)
			r.Post("/", formH.Create)
			r.Get("/{id}", formH.Get)
			r.Put("/{id}", formH.Update)
			r.Delete("/{id}", formH.Delete)
		})
	})

	return r
}
