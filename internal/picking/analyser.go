package picking

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"opsanalytics/internal/config"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/operations"
	"opsanalytics/pkg/contracts/domain"
)

// Pipeline names reported in logs, spans and stage metrics
const (
	PipelineClean      = "picking.clean"
	PipelineDeliveries = "picking.deliveries"
)

// Stage identifiers of the delivery pipeline
const (
	StageBandPackTime = "band_pack_time"
	StagePickingSpeed = "picking_speed"
)

// Analyser produces picking reports from raw pick events. It is safe for
// concurrent use.
type Analyser struct {
	excluded []string
	layout   string
	logger   *slog.Logger
	metrics  *infrastructure.AnalyticsMetrics
	tracer   trace.Tracer
}

// Option configures an Analyser.
type Option func(*Analyser)

// WithExcludedPickTypes replaces the excluded pick types.
func WithExcludedPickTypes(types []string) Option {
	return func(a *Analyser) { a.excluded = slices.Clone(types) }
}

// WithEventTimeLayout sets the EVENT_TIME layout.
func WithEventTimeLayout(layout string) Option {
	return func(a *Analyser) {
		if layout != "" {
			a.layout = layout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyser) { a.logger = l }
}

// WithMetrics records stage metrics.
func WithMetrics(m *infrastructure.AnalyticsMetrics) Option {
	return func(a *Analyser) { a.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(a *Analyser) { a.tracer = t }
}

// FromConfig applies a picking configuration section.
func FromConfig(cfg config.PickingConfig) Option {
	return func(a *Analyser) {
		if cfg.ExcludedPickTypes != nil {
			a.excluded = slices.Clone(cfg.ExcludedPickTypes)
		}
		if cfg.EventTimeLayout != "" {
			a.layout = cfg.EventTimeLayout
		}
	}
}

// NewAnalyser creates an Analyser excluding GNR picks by default.
func NewAnalyser(opts ...Option) *Analyser {
	a := &Analyser{
		excluded: []string{domain.PickTypeGNR},
		layout:   config.EventTimeLayout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = infrastructure.WithComponent(a.logger, "picking")
	if a.tracer == nil {
		a.tracer = otel.Tracer("opsanalytics/picking")
	}
	return a
}

func (a *Analyser) pipelineOptions() []operations.Option {
	return []operations.Option{
		operations.WithLogger(a.logger),
		operations.WithMetrics(a.metrics),
		operations.WithTracer(a.tracer),
	}
}

// Clean runs the cleaning stages over events.
func (a *Analyser) Clean(ctx context.Context, events []domain.PickEvent) ([]domain.PickEvent, error) {
	p := operations.NewPipeline(PipelineClean, CleaningStages(a.excluded, a.layout), a.pipelineOptions()...).
		WithCounter(func(v []domain.PickEvent) int { return len(v) })
	out, _, err := p.Run(ctx, events)
	return out, err
}

// Deliveries aggregates cleaned events into banded deliveries with their
// picking speed.
func (a *Analyser) Deliveries(ctx context.Context, cleaned []domain.PickEvent) ([]domain.Delivery, error) {
	reg := operations.NewRegistry[[]domain.Delivery]().MustRegister(
		operations.NewStage(StageBandPackTime, "Band pack time",
			func(_ context.Context, in []domain.Delivery) ([]domain.Delivery, error) {
				return BandPackTime(in), nil
			}),
		operations.NewStage(StagePickingSpeed, "Picking speed",
			func(_ context.Context, in []domain.Delivery) ([]domain.Delivery, error) {
				return PickingSpeed(in), nil
			}),
	)
	p := operations.NewPipeline(PipelineDeliveries, reg, a.pipelineOptions()...).
		WithCounter(func(v []domain.Delivery) int { return len(v) })
	out, _, err := p.Run(ctx, BuildDeliveries(cleaned))
	return out, err
}

// Analyse cleans events and builds every picking aggregate.
func (a *Analyser) Analyse(ctx context.Context, events []domain.PickEvent) (*domain.PickingReport, error) {
	ctx, span := a.tracer.Start(ctx, "picking.analyse",
		trace.WithAttributes(attribute.Int("events.in", len(events))))
	defer span.End()
	start := time.Now()

	cleaned, err := a.Clean(ctx, events)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	deliveries, err := a.Deliveries(ctx, cleaned)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	hours := OperatorHourlyLines(cleaned)
	report := &domain.PickingReport{
		Deliveries:    deliveries,
		Summary:       SummariseDeliveries(deliveries),
		Operators:     AggregateOperators(hours),
		OperatorHours: hours,
		CleanedEvents: len(cleaned),
	}

	span.SetAttributes(
		attribute.Int("events.cleaned", len(cleaned)),
		attribute.Int("deliveries", len(deliveries)),
		attribute.Int("operators", len(report.Operators)),
	)
	span.SetStatus(codes.Ok, "")
	a.logger.InfoContext(ctx, "picking_report_built",
		slog.Int("events", len(events)),
		slog.Int("cleaned_events", len(cleaned)),
		slog.Int("deliveries", len(deliveries)),
		slog.Int("operators", len(report.Operators)),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}
