package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"opsanalytics/internal/config"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	runtime   *infrastructure.RuntimeMetrics
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. paths and rt may be nil.
func NewHealthService(version string, paths *config.Paths, rt *infrastructure.RuntimeMetrics, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   version,
		paths:     paths,
		runtime:   rt,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports not_ready when the reports directory is not
// writable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"reports": hs.checkReportsDir(),
		},
	}

	for name, s := range status.Services {
		if s.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness_check_failed",
				slog.String("service", name),
				slog.String("message", s.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	rt := map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hs.runtime != nil {
		snap := hs.runtime.Snapshot()
		rt["heap_alloc_bytes"] = snap.HeapAlloc
		rt["gc_count"] = snap.GCCount
	}
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   rt,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"name":        config.AppName,
		"version":     hs.version,
		"build_time":  info.BuildTime,
		"git_commit":  info.GitCommit,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"data_format": info.DataFormat,
		"api_version": info.APIVersion,
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkReportsDir() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "ready", Message: "no report directory configured"}
	}

	dir := hs.paths.ReportsDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("cannot create reports directory: %v", err),
		}
	}
	tmp, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("cannot write to reports directory: %v", err),
		}
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return ServiceHealth{Status: "ready"}
}
