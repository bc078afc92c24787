package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"opsanalytics/internal/config"
	apierrors "opsanalytics/internal/errors"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/middleware"
)

// RouterDeps carries everything the router wires together. Metrics,
// Tracer and PrometheusHTTP are optional.
type RouterDeps struct {
	Config         *config.Config
	Logger         *slog.Logger
	ErrorHandler   *apierrors.ErrorHandler
	Occupancy      OccupancyServiceInterface
	Picking        PickingServiceInterface
	Health         HealthServiceInterface
	Metrics        *infrastructure.AnalyticsMetrics
	Tracer         trace.Tracer
	PrometheusHTTP http.Handler
}

// NewRouter builds the HTTP API.
// Order: RequestID → RealIP → OTel → logging/recovery → security → rate limit → timeout.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	errorHandler := deps.ErrorHandler
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)

	// Health checks and scraping stay outside the API group so they are never
	// rate limited.
	health := NewHealthHandler(deps.Health, logger)
	r.Get("/healthz", health.HealthCheck)
	r.Get("/readyz", health.ReadinessCheck)
	r.Get("/livez", health.LivenessCheck)
	r.Get("/version", health.Version)
	if deps.PrometheusHTTP != nil {
		r.Handle("/metrics", deps.PrometheusHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Tracer != nil {
			r.Use(middleware.NewOTelMiddleware(deps.Tracer, deps.Metrics, logger).Handler)
		}
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
		r.Use(apierrors.NewErrorMiddleware(errorHandler, logger).Handler)
		r.Use(middleware.SecurityHeaders)
		if cfg.Security.RateLimit.Enabled {
			r.Use(middleware.NewRateLimiter(
				cfg.Security.RateLimit.RPS,
				cfg.Security.RateLimit.Burst,
				errorHandler,
				logger,
			).Handler)
		}
		r.Use(middleware.Timeout(requestTimeout(cfg)))
		r.Use(middleware.Compress(5))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/occupancy", NewOccupancyHandler(deps.Occupancy, logger, errorHandler).Routes())
		r.Mount("/picking", NewPickingHandler(deps.Picking, logger, errorHandler).Routes())
	})

	return r
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.RequestTimeout > 0 {
		return cfg.Server.RequestTimeout
	}
	return cfg.Server.WriteTimeout
}
