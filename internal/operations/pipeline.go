package operations

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"opsanalytics/internal/infrastructure"
)

// Option configures a Pipeline
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	metrics *infrastructure.AnalyticsMetrics
	tracer  trace.Tracer
}

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records stage executions on m
func WithMetrics(m *infrastructure.AnalyticsMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTracer sets the tracer used for stage spans
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Pipeline runs the stages of a registry in order
type Pipeline[T any] struct {
	name     string
	registry *Registry[T]
	count    func(T) int
	settings
}

// NewPipeline creates a pipeline over the stages in registry
func NewPipeline[T any](name string, registry *Registry[T], opts ...Option) *Pipeline[T] {
	s := settings{
		logger: infrastructure.WithComponent(nil, "operations"),
		tracer: otel.Tracer("opsanalytics/operations"),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Pipeline[T]{
		name:     name,
		registry: registry,
		count:    func(T) int { return 0 },
		settings: s,
	}
}

// WithCounter sets how many records a value holds, for logs and metrics
func (p *Pipeline[T]) WithCounter(fn func(T) int) *Pipeline[T] {
	if fn != nil {
		p.count = fn
	}
	return p
}

// Name returns the pipeline name
func (p *Pipeline[T]) Name() string {
	return p.name
}

// RunStatus is the overall status of a pipeline run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState describes one pipeline run
type RunState struct {
	ID        string       `json:"id"`
	Pipeline  string       `json:"pipeline"`
	Status    RunStatus    `json:"status"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Steps     []*StepState `json:"steps"`
}

// Step returns the state of the stage with the given id, or nil
func (r *RunState) Step(id string) *StepState {
	for _, s := range r.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Duration returns the wall time of the run
func (r *RunState) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Run threads input through every stage. On failure the zero value of T
// is returned together with the run state and an *OperationError.
func (p *Pipeline[T]) Run(ctx context.Context, input T) (T, *RunState, error) {
	stages := p.registry.List()
	run := &RunState{
		ID:        uuid.New().String(),
		Pipeline:  p.name,
		Status:    RunStatusRunning,
		StartTime: time.Now(),
		Steps:     make([]*StepState, len(stages)),
	}
	for i, s := range stages {
		run.Steps[i] = NewStepState(s.ID(), s.Name())
	}

	logger := p.logger.With(slog.String("run_id", run.ID))
	logger.InfoContext(ctx, "pipeline_started",
		slog.String("pipeline", p.name),
		slog.Int("total_stages", len(stages)),
		slog.Int("input_records", p.count(input)))

	current := input
	for i, stage := range stages {
		state := run.Steps[i]

		select {
		case <-ctx.Done():
			err := NewCancellationError(stage.ID(), ctx.Err())
			err.Pipeline = p.name
			state.Fail(err)
			p.skipRemaining(run, i+1)
			return p.finish(ctx, logger, run, RunStatusCancelled, err)
		default:
		}

		logger.InfoContext(ctx, "executing_stage",
			slog.String("stage", stage.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(stages)))

		out, err := p.execute(ctx, stage, state, current)
		if err != nil {
			p.skipRemaining(run, i+1)
			status := RunStatusFailed
			if GetErrorType(err) == ErrorTypeCancellation {
				status = RunStatusCancelled
			}
			return p.finish(ctx, logger, run, status, err)
		}
		current = out
	}

	run.Status = RunStatusCompleted
	run.EndTime = time.Now()
	logger.InfoContext(ctx, "pipeline_completed",
		slog.String("pipeline", p.name),
		slog.Int("output_records", p.count(current)),
		slog.Duration("duration", run.Duration()))
	return current, run, nil
}

func (p *Pipeline[T]) execute(ctx context.Context, stage Stage[T], state *StepState, in T) (T, error) {
	ctx, span := p.tracer.Start(ctx, p.name+"."+stage.ID(),
		trace.WithAttributes(
			attribute.String("pipeline.name", p.name),
			attribute.String("stage.id", stage.ID()),
			attribute.String("stage.name", stage.Name()),
		))
	defer span.End()

	inCount := p.count(in)
	state.Start(inCount)

	out, err := stage.Execute(ctx, in)
	if err != nil {
		var opErr *OperationError
		switch {
		case ctx.Err() != nil:
			opErr = NewCancellationError(stage.ID(), err)
		default:
			opErr = NewExecutionError(stage.ID(), err)
		}
		opErr.Pipeline = p.name
		state.Fail(opErr)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.RecordStage(ctx, p.name, stage.ID(), state.Duration(), inCount, 0, err)

		p.logger.ErrorContext(ctx, "stage_failed",
			slog.String("stage", stage.ID()),
			slog.String("error", err.Error()))

		var zero T
		return zero, opErr
	}

	outCount := p.count(out)
	state.Complete(outCount)
	span.SetAttributes(
		attribute.Int("records.in", inCount),
		attribute.Int("records.out", outCount),
	)
	span.SetStatus(codes.Ok, "")
	p.metrics.RecordStage(ctx, p.name, stage.ID(), state.Duration(), inCount, outCount, nil)
	return out, nil
}

func (p *Pipeline[T]) skipRemaining(run *RunState, from int) {
	for _, s := range run.Steps[from:] {
		s.Skip("previous stage did not complete")
	}
}

func (p *Pipeline[T]) finish(ctx context.Context, logger *slog.Logger, run *RunState, status RunStatus, err error) (T, *RunState, error) {
	run.Status = status
	run.EndTime = time.Now()
	logger.ErrorContext(ctx, "pipeline_failed",
		slog.String("pipeline", p.name),
		slog.String("status", string(status)),
		slog.String("failed_stage", FailedStep(err)),
		slog.String("error", err.Error()))
	var zero T
	return zero, run, err
}
