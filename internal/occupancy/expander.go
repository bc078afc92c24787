package occupancy

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"opsanalytics/internal/infrastructure"
	"opsanalytics/pkg/contracts/domain"
)

// DefaultParallelThreshold is the batch size below which expansion stays
// on the calling goroutine.
const DefaultParallelThreshold = 2048

// Expander turns bookings into one Occupancy row per occupied day.
// An Expander is safe for concurrent use.
type Expander struct {
	policy            Policy
	workers           int
	parallelThreshold int
	logger            *slog.Logger
	metrics           *infrastructure.AnalyticsMetrics
	tracer            trace.Tracer
}

// Option configures an Expander.
type Option func(*Expander)

// WithPolicy sets the invalid-record policy.
func WithPolicy(p Policy) Option {
	return func(e *Expander) { e.policy = p }
}

// WithWorkers bounds the number of shards expanded concurrently. Values
// below one mean runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(e *Expander) { e.workers = n }
}

// WithParallelThreshold sets the smallest batch that is sharded.
func WithParallelThreshold(n int) Option {
	return func(e *Expander) { e.parallelThreshold = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) { e.logger = l }
}

// WithMetrics records stage and invalid-record metrics.
func WithMetrics(m *infrastructure.AnalyticsMetrics) Option {
	return func(e *Expander) { e.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Expander) { e.tracer = t }
}

// NewExpander creates an Expander. The default policy is PolicyFailFast.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		policy:            PolicyFailFast,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.parallelThreshold < 1 {
		e.parallelThreshold = 1
	}
	e.logger = infrastructure.WithComponent(e.logger, "occupancy")
	if e.tracer == nil {
		e.tracer = otel.Tracer("opsanalytics/occupancy")
	}
	return e
}

// Policy returns the configured invalid-record policy.
func (e *Expander) Policy() Policy {
	return e.policy
}

// Expand expands bookings with default options.
func Expand(ctx context.Context, bookings []domain.Booking) ([]domain.Occupancy, error) {
	return NewExpander().Expand(ctx, bookings)
}

// Expand returns one row per (booking, occupied day), grouped by booking
// in input order and ascending by day within a booking.
//
// Under PolicyCollect a non-nil result is returned together with an
// *InvalidRecordsError when some bookings were rejected.
func (e *Expander) Expand(ctx context.Context, bookings []domain.Booking) ([]domain.Occupancy, error) {
	ctx, span := e.tracer.Start(ctx, "occupancy.expand", trace.WithAttributes(
		attribute.Int("bookings", len(bookings)),
		attribute.String("policy", e.policy.String()),
	))
	defer span.End()

	start := time.Now()
	out, err := e.expand(ctx, bookings)
	e.metrics.RecordStage(ctx, "occupancy", "expand", time.Since(start), len(bookings), len(out), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, err
}

func (e *Expander) expand(ctx context.Context, bookings []domain.Booking) ([]domain.Occupancy, error) {
	if len(bookings) == 0 {
		return []domain.Occupancy{}, nil
	}

	invalid, fatal := e.validate(bookings)
	if fatal != nil {
		e.metrics.RecordInvalid(ctx, "occupancy", 1)
		e.logger.WarnContext(ctx, "booking_batch_rejected",
			slog.Int("index", fatal.Index),
			slog.Int("row", fatal.Row),
			slog.String("booking_id", fatal.BookingID),
			slog.String("reason", fatal.Reason))
		return nil, fatal
	}

	// offsets[i] is where booking i's rows start in the output
	offsets := make([]int, len(bookings)+1)
	for i, b := range bookings {
		offsets[i+1] = offsets[i] + DaysOccupied(b)
	}
	out := make([]domain.Occupancy, offsets[len(bookings)])

	if err := e.fill(ctx, bookings, offsets, out); err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "bookings_expanded",
		slog.Int("bookings", len(bookings)),
		slog.Int("rows", len(out)),
		slog.Int("invalid", len(invalid)))

	if len(invalid) > 0 {
		e.metrics.RecordInvalid(ctx, "occupancy", len(invalid))
		e.logger.WarnContext(ctx, "invalid_bookings_skipped",
			slog.Int("invalid", len(invalid)),
			slog.Int("first_row", invalid[0].Row))
		return out, &InvalidRecordsError{Records: invalid}
	}
	return out, nil
}

// validate applies the policy. fatal is set when the batch must be
// rejected; otherwise invalid lists bookings skipped under PolicyCollect.
func (e *Expander) validate(bookings []domain.Booking) (invalid []*InvalidRecordError, fatal *InvalidRecordError) {
	for i, b := range bookings {
		bad := Validate(i, b)
		if bad == nil {
			continue
		}
		switch {
		case e.policy == PolicyCollect:
			invalid = append(invalid, bad)
		case e.policy == PolicySkipInverted && bad.Reason == ReasonInverted:
		default:
			return nil, bad
		}
	}
	return invalid, nil
}

// Validate checks one booking; i is its index in the batch. Errors
// report the booking's own source Row.
func Validate(i int, b domain.Booking) *InvalidRecordError {
	var reason string
	switch {
	case b.StartedAt.IsZero():
		reason = ReasonMissingStart
	case b.ClosedAt.IsZero():
		reason = ReasonMissingEnd
	case b.ClosedAt.Before(b.StartedAt):
		reason = ReasonInverted
	default:
		return nil
	}
	return &InvalidRecordError{Index: i, Row: b.Row, BookingID: b.ID, Reason: reason}
}

// fill writes every booking's rows into its own window of out. Shards
// own disjoint windows, so no synchronisation beyond the errgroup is
// needed and input order is preserved without a merge step.
func (e *Expander) fill(ctx context.Context, bookings []domain.Booking, offsets []int, out []domain.Occupancy) error {
	if len(bookings) < e.parallelThreshold || e.workers == 1 {
		return fillRange(ctx, bookings, offsets, out, 0, len(bookings))
	}

	shards := e.workers * 4
	size := (len(bookings) + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for lo := 0; lo < len(bookings); lo += size {
		hi := min(lo+size, len(bookings))
		g.Go(func() error {
			return fillRange(gctx, bookings, offsets, out, lo, hi)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("expand bookings: %w", err)
	}
	return nil
}

func fillRange(ctx context.Context, bookings []domain.Booking, offsets []int, out []domain.Occupancy, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		ExpandBooking(out[offsets[i]:offsets[i]:offsets[i+1]], bookings[i])
	}
	return nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	b.Attributes = maps.Clone(b.Attributes)
	return b
}
