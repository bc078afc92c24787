package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"opsanalytics/internal/config"
	apierrors "opsanalytics/internal/errors"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/services"
	handlers "opsanalytics/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Paths          *config.Paths
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	Services       *ServiceContainer
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.AnalyticsMetrics
	RuntimeMetrics *infrastructure.RuntimeMetrics
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Occupancy *services.OccupancyService
	Picking   *services.PickingService
	Health    *services.HealthService
}

// NewApplication wires the application from an already loaded config.
// The logger is initialised from cfg.Logging.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return newApplication(cfg, logger)
}

func newApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("application_starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	logger.Info("paths_resolved", slog.Any("paths", paths))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewAnalyticsMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	a := &Application{
		Config:         cfg,
		Paths:          paths,
		Logger:         logger,
		OTelProviders:  otelProviders,
		Metrics:        metrics,
		RuntimeMetrics: runtimeMetrics,
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Services = &ServiceContainer{
		Occupancy: services.NewOccupancyService(a.Config, a.Logger, a.Metrics),
		Picking:   services.NewPickingService(a.Config, a.Logger, a.Metrics),
		Health:    services.NewHealthService(config.AppVersion, a.Paths, a.RuntimeMetrics, a.Logger),
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	a.Router = handlers.NewRouter(handlers.RouterDeps{
		Config:         a.Config,
		Logger:         a.Logger,
		ErrorHandler:   apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development),
		Occupancy:      a.Services.Occupancy,
		Picking:        a.Services.Picking,
		Health:         a.Services.Health,
		Metrics:        a.Metrics,
		Tracer:         a.OTelProviders.Tracer,
		PrometheusHTTP: a.OTelProviders.PrometheusHTTP,
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts
// down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "startup_health_check_warnings", slog.String("warnings", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server_listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Run listens on the configured port and serves until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting_down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.RuntimeMetrics != nil {
		if err := a.RuntimeMetrics.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "runtime_metrics_close_failed", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "otel_shutdown_failed", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown_complete")
	return nil
}

// performStartupHealthCheck verifies the working directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"data":    a.Paths.DataDir,
		"reports": a.Paths.ReportsDir,
		"logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
			continue
		}
		os.Remove(testFile)
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "startup_health_check_passed")
	return nil
}
