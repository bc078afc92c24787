// Command picking turns a warehouse pick log into delivery, pack-time
// and operator throughput reports.
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
	"strings"
	"syscall"

	"opsanalytics/internal/config"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/services"
)

// options are the command-line flags
type options struct {
	in      string
	out     string
	exclude string
	xlsx    bool
	config  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("picking", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.in, "in", "", "pick log (.csv or .xlsx), or a directory of them")
	fs.StringVar(&opts.out, "out", "", "output directory (defaults to the reports directory)")
	fs.StringVar(&opts.exclude, "exclude", "", "comma separated pick types to drop (defaults to config, GNR)")
	fs.BoolVar(&opts.xlsx, "xlsx", false, "also write "+config.PickingWorkbookXLSX)
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
	if o.exclude != "" {
		var types []string
		for _, t := range strings.Split(o.exclude, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		cfg.Picking.ExcludedPickTypes = types
	}
	if o.xlsx {
		cfg.Picking.WriteWorkbook = true
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
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

	out := opts.out
	if out == "" {
		out = paths.ReportsDir
	}

	svc := services.NewPickingService(cfg, logger, nil)

	var results []*services.PickingFileResult
	if info, statErr := os.Stat(opts.in); statErr == nil && info.IsDir() {
		results, err = svc.AnalyseDir(ctx, opts.in, out)
	} else {
		var res *services.PickingFileResult
		if res, err = svc.AnalyseFile(ctx, opts.in, out); err == nil {
			results = append(results, res)
		}
	}
	if err != nil {
		logger.ErrorContext(ctx, "picking_failed", slog.String("error", err.Error()))
		return err
	}

	for _, res := range results {
		logger.InfoContext(ctx, "picking_completed",
			slog.String("input", res.Input),
			slog.Any("files", res.Files),
			slog.Int("events", res.Report.CleanedEvents),
			slog.Int("deliveries", len(res.Report.Deliveries)),
			slog.Int("operators", len(res.Report.Operators)),
			slog.Duration("duration", res.Duration))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "picking:", err)
		}
		stop()
		os.Exit(1)
	}
}
