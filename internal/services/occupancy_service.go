package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"opsanalytics/internal/config"
	apperrors "opsanalytics/internal/errors"
	"opsanalytics/internal/exporter"
	"opsanalytics/internal/files"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/occupancy"
	"opsanalytics/internal/table"
	"opsanalytics/internal/validation"
	"opsanalytics/pkg/contracts/domain"
)

// ExpandResult is the outcome of expanding one batch of bookings.
type ExpandResult struct {
	Policy   string                   `json:"policy"`
	Bookings int                      `json:"bookings"`
	Rows     []domain.Occupancy       `json:"rows"`
	Invalid  []apperrors.RecordDetail `json:"invalid,omitempty"`
}

// ExpandFileResult summarises a file-to-file expansion.
type ExpandFileResult struct {
	Input    string                   `json:"input"`
	Output   string                   `json:"output"`
	Policy   string                   `json:"policy"`
	Bookings int                      `json:"bookings"`
	Rows     int                      `json:"rows"`
	Invalid  []apperrors.RecordDetail `json:"invalid,omitempty"`
	Duration time.Duration            `json:"duration_ns"`
}

// OccupancyService expands bookings under the configured or requested
// invalid-record policy.
type OccupancyService struct {
	cfg      config.OccupancyConfig
	exporter *exporter.OccupancyExporter
	files    *validation.FileValidator
	logger   *slog.Logger
	metrics  *infrastructure.AnalyticsMetrics

	mu        sync.Mutex
	expanders map[occupancy.Policy]*occupancy.Expander
}

// NewOccupancyService creates an occupancy service
func NewOccupancyService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.AnalyticsMetrics) *OccupancyService {
	logger = infrastructure.WithComponent(logger, "occupancy_service")
	return &OccupancyService{
		cfg:       cfg.Occupancy,
		exporter:  exporter.NewOccupancyExporter(exporter.NewCSVWriter(nil, logger)),
		files:     validation.NewFileValidator(logger),
		logger:    logger,
		metrics:   metrics,
		expanders: make(map[occupancy.Policy]*occupancy.Expander),
	}
}

// DefaultPolicy returns the configured policy
func (s *OccupancyService) DefaultPolicy() string {
	return s.cfg.Policy
}

func (s *OccupancyService) expander(policy string) (*occupancy.Expander, error) {
	if policy == "" {
		policy = s.cfg.Policy
	}
	p, err := occupancy.ParsePolicy(policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, policy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.expanders[p]; ok {
		return e, nil
	}
	e := occupancy.NewExpander(
		occupancy.WithPolicy(p),
		occupancy.WithWorkers(s.cfg.Workers),
		occupancy.WithParallelThreshold(s.cfg.ParallelThreshold),
		occupancy.WithLogger(s.logger),
		occupancy.WithMetrics(s.metrics),
	)
	s.expanders[p] = e
	return e, nil
}

// Expand expands bookings. An empty policy means the configured one.
// Under the collect policy rejected bookings are reported in
// ExpandResult.Invalid instead of as an error.
func (s *OccupancyService) Expand(ctx context.Context, bookings []domain.Booking, policy string) (*ExpandResult, error) {
	e, err := s.expander(policy)
	if err != nil {
		return nil, err
	}

	rows, err := e.Expand(ctx, bookings)
	res := &ExpandResult{
		Policy:   e.Policy().String(),
		Bookings: len(bookings),
		Rows:     rows,
	}

	var collected *occupancy.InvalidRecordsError
	switch {
	case err == nil:
	case errors.As(err, &collected):
		res.Invalid = collected.RecordDetails()
	default:
		return nil, err
	}

	s.logger.InfoContext(ctx, "expansion_completed",
		slog.String("policy", res.Policy),
		slog.Int("bookings", res.Bookings),
		slog.Int("rows", len(res.Rows)),
		slog.Int("invalid", len(res.Invalid)))
	return res, nil
}

// BookingOptions returns the table mapping for the configured columns
func (s *OccupancyService) BookingOptions() table.BookingOptions {
	layouts := s.cfg.TimeLayouts
	if len(layouts) == 0 {
		layouts = config.DefaultTimeLayouts()
	}
	return table.BookingOptions{
		Columns: table.BookingColumns{
			ID:    s.cfg.IDColumn,
			Start: s.cfg.StartColumn,
			End:   s.cfg.EndColumn,
		},
		Layouts: layouts,
	}
}

// ExpandFile reads bookings from a CSV or xlsx file and writes the
// occupancy rows as CSV to outPath, keeping every source column.
func (s *OccupancyService) ExpandFile(ctx context.Context, inPath, outPath, policy string) (*ExpandFileResult, error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)

	s.logger.InfoContext(ctx, "expanding_file",
		slog.String("input", inPath),
		slog.String("output", outPath))

	if err := s.files.ValidateInputFile(inPath); err != nil {
		return nil, err
	}

	t, err := table.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}
	bookings, err := t.Bookings(s.BookingOptions())
	if err != nil {
		return nil, fmt.Errorf("map bookings: %w", err)
	}

	res, err := s.Expand(ctx, bookings, policy)
	if err != nil {
		return nil, err
	}

	if err := s.exporter.ExportFile(outPath, t.Columns, res.Rows); err != nil {
		return nil, apperrors.NewStorageError("failed to write occupancy", err).WithContext("path", outPath)
	}

	return &ExpandFileResult{
		Input:    inPath,
		Output:   outPath,
		Policy:   res.Policy,
		Bookings: res.Bookings,
		Rows:     len(res.Rows),
		Invalid:  res.Invalid,
		Duration: time.Since(start),
	}, nil
}

// ExpandDir expands every input table directly inside inDir into
// outDir/<name>.occupancy.csv. It stops at the first failing file.
func (s *OccupancyService) ExpandDir(ctx context.Context, inDir, outDir, policy string) ([]*ExpandFileResult, error) {
	if err := s.files.ValidateInputDirectory(inDir); err != nil {
		return nil, err
	}
	if err := s.files.ValidateOutputDirectory(outDir); err != nil {
		return nil, err
	}

	inputs, err := files.NewDiscovery("").FindInputFiles(inDir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list bookings", err).WithContext("dir", inDir)
	}

	results := make([]*ExpandFileResult, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.ExpandFile(ctx, in.Path, filepath.Join(outDir, in.Stem()+".occupancy.csv"), policy)
		if err != nil {
			return results, fmt.Errorf("%s: %w", in.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
