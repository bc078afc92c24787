package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics exposes process gauges observed at collection time.
type RuntimeMetrics struct {
	startTime    time.Time
	registration metric.Registration
}

// RuntimeStats is a point-in-time snapshot of the Go runtime.
type RuntimeStats struct {
	GoRoutines    int64         `json:"goroutines"`
	HeapAlloc     int64         `json:"heap_alloc_bytes"`
	HeapSys       int64         `json:"heap_sys_bytes"`
	GCCount       uint32        `json:"gc_count"`
	CPUCount      int           `json:"cpu_count"`
	ProcessUptime time.Duration `json:"uptime_ns"`
}

// NewRuntimeMetrics registers observable gauges for goroutines, heap and
// uptime on meter.
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{startTime: time.Now()}

	goroutines, err := meter.Int64ObservableGauge(
		"runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heap, err := meter.Int64ObservableGauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64ObservableGauge(
		"process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rm.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := rm.Snapshot()
		o.ObserveInt64(goroutines, stats.GoRoutines)
		o.ObserveInt64(heap, stats.HeapAlloc)
		o.ObserveFloat64(uptime, stats.ProcessUptime.Seconds())
		return nil
	}, goroutines, heap, uptime)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime callback: %w", err)
	}

	return rm, nil
}

// Snapshot reads the current runtime statistics.
func (rm *RuntimeMetrics) Snapshot() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     int64(mem.HeapAlloc),
		HeapSys:       int64(mem.HeapSys),
		GCCount:       mem.NumGC,
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(rm.startTime),
	}
}

// Close unregisters the gauge callback.
func (rm *RuntimeMetrics) Close() error {
	if rm.registration == nil {
		return nil
	}
	return rm.registration.Unregister()
}
