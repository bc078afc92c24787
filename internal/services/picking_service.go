package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"opsanalytics/internal/config"
	apperrors "opsanalytics/internal/errors"
	"opsanalytics/internal/exporter"
	"opsanalytics/internal/files"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/picking"
	"opsanalytics/internal/table"
	"opsanalytics/internal/validation"
	"opsanalytics/pkg/contracts/domain"
)

// PickingFileResult summarises a file-based picking analysis.
type PickingFileResult struct {
	Input    string                `json:"input"`
	Files    []string              `json:"files"`
	Report   *domain.PickingReport `json:"-"`
	Duration time.Duration         `json:"duration_ns"`
}

// PickingService builds picking reports
type PickingService struct {
	analyser      *picking.Analyser
	exporter      *exporter.PickingExporter
	files         *validation.FileValidator
	writeWorkbook bool
	logger        *slog.Logger
}

// NewPickingService creates a picking service
func NewPickingService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.AnalyticsMetrics) *PickingService {
	logger = infrastructure.WithComponent(logger, "picking_service")
	return &PickingService{
		analyser: picking.NewAnalyser(
			picking.FromConfig(cfg.Picking),
			picking.WithLogger(logger),
			picking.WithMetrics(metrics),
		),
		exporter:      exporter.NewPickingExporter(exporter.NewCSVWriter(nil, logger)),
		files:         validation.NewFileValidator(logger),
		writeWorkbook: cfg.Picking.WriteWorkbook,
		logger:        logger,
	}
}

// Analyse cleans events and aggregates them
func (s *PickingService) Analyse(ctx context.Context, events []domain.PickEvent) (*domain.PickingReport, error) {
	return s.analyser.Analyse(ctx, events)
}

// AnalyseFile reads a pick log from a CSV or xlsx file and writes the
// report tables into outDir, plus the workbook when configured.
func (s *PickingService) AnalyseFile(ctx context.Context, inPath, outDir string) (*PickingFileResult, error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)

	s.logger.InfoContext(ctx, "analysing_file",
		slog.String("input", inPath),
		slog.String("output_dir", outDir),
		slog.Bool("workbook", s.writeWorkbook))

	if err := s.files.ValidateInputFile(inPath); err != nil {
		return nil, err
	}
	if err := s.files.ValidateOutputDirectory(outDir); err != nil {
		return nil, err
	}

	t, err := table.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("read pick log: %w", err)
	}
	events, err := t.PickEvents()
	if err != nil {
		return nil, fmt.Errorf("map pick log: %w", err)
	}

	report, err := s.Analyse(ctx, events)
	if err != nil {
		return nil, err
	}

	files, err := s.exporter.ExportCSV(outDir, report)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to write picking report", err).WithContext("dir", outDir)
	}
	if s.writeWorkbook {
		path, err := s.exporter.ExportWorkbook(filepath.Join(outDir, config.PickingWorkbookXLSX), report)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to write picking workbook", err).WithContext("dir", outDir)
		}
		files = append(files, path)
	}

	return &PickingFileResult{
		Input:    inPath,
		Files:    files,
		Report:   report,
		Duration: time.Since(start),
	}, nil
}

// AnalyseDir analyses every pick log directly inside inDir, writing each
// report into outDir/<name>/. It stops at the first failing file.
func (s *PickingService) AnalyseDir(ctx context.Context, inDir, outDir string) ([]*PickingFileResult, error) {
	if err := s.files.ValidateInputDirectory(inDir); err != nil {
		return nil, err
	}

	inputs, err := files.NewDiscovery("").FindInputFiles(inDir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list pick logs", err).WithContext("dir", inDir)
	}

	results := make([]*PickingFileResult, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.AnalyseFile(ctx, in.Path, filepath.Join(outDir, in.Stem()))
		if err != nil {
			return results, fmt.Errorf("%s: %w", in.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
