// Command occupancy expands a bookings table into one row per occupied
// calendar day.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"opsanalytics/internal/config"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/services"
)

// options are the command-line flags
type options struct {
	in       string
	out      string
	policy   string
	workers  int
	startCol string
	endCol   string
	idCol    string
	config   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("occupancy", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.in, "in", "", "bookings file (.csv or .xlsx), or a directory of them")
	fs.StringVar(&opts.out, "out", "", "output CSV, or output directory when -in is a directory (defaults to the reports directory)")
	fs.StringVar(&opts.policy, "policy", "", "invalid record policy: fail, collect or skip (defaults to config)")
	fs.IntVar(&opts.workers, "workers", 0, "parallel workers (0 uses config, then GOMAXPROCS)")
	fs.StringVar(&opts.startCol, "start-col", "", "start timestamp column")
	fs.StringVar(&opts.endCol, "end-col", "", "end timestamp column")
	fs.StringVar(&opts.idCol, "id-col", "", "booking id column")
	fs.StringVar(&opts.config, "config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.in == "" {
		return nil, errors.New("-in is required")
	}
	return opts, nil
}

// apply overlays the flags onto the loaded configuration
func (o *options) apply(cfg *config.Config) {
	if o.policy != "" {
		cfg.Occupancy.Policy = o.policy
	}
	if o.workers > 0 {
		cfg.Occupancy.Workers = o.workers
	}
	if o.startCol != "" {
		cfg.Occupancy.StartColumn = o.startCol
	}
	if o.endCol != "" {
		cfg.Occupancy.EndColumn = o.endCol
	}
	if o.idCol != "" {
		cfg.Occupancy.IDColumn = o.idCol
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// reportsDir resolves and creates the configured reports directory
func reportsDir(cfg *config.Config) (string, error) {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return "", err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return "", err
	}
	return paths.ReportsDir, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	opts.in = paths.ResolveInput(opts.in)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	svc := services.NewOccupancyService(cfg, logger, nil)

	var results []*services.ExpandFileResult
	if info, statErr := os.Stat(opts.in); statErr == nil && info.IsDir() {
		outDir := opts.out
		if outDir == "" {
			if outDir, err = reportsDir(cfg); err != nil {
				return err
			}
		}
		results, err = svc.ExpandDir(ctx, opts.in, outDir, "")
	} else {
		out := opts.out
		if out == "" {
			dir, dirErr := reportsDir(cfg)
			if dirErr != nil {
				return dirErr
			}
			out = filepath.Join(dir, config.OccupancyCSV)
		}
		var res *services.ExpandFileResult
		if res, err = svc.ExpandFile(ctx, opts.in, out, ""); err == nil {
			results = append(results, res)
		}
	}
	if err != nil {
		logger.ErrorContext(ctx, "occupancy_failed", slog.String("error", err.Error()))
		return err
	}

	for _, res := range results {
		logger.InfoContext(ctx, "occupancy_completed",
			slog.String("input", res.Input),
			slog.String("output", res.Output),
			slog.String("policy", res.Policy),
			slog.Int("bookings", res.Bookings),
			slog.Int("rows", res.Rows),
			slog.Int("invalid", len(res.Invalid)),
			slog.Duration("duration", res.Duration))
		for _, rec := range res.Invalid {
			logger.WarnContext(ctx, "booking_skipped",
				slog.String("input", res.Input),
				slog.Int("row", rec.Row),
				slog.String("id", rec.ID),
				slog.String("reason", rec.Reason))
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "occupancy:", err)
		}
		stop()
		os.Exit(1)
	}
}
