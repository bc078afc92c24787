// Package operations runs ordered, typed stages over an immutable value.
//
// A Pipeline threads a value of type T through the stages of a Registry
// in registration order. Each stage receives the previous stage's output
// and returns a new value; stages never mutate their input in place.
//
// Every run gets a uuid run id, one OpenTelemetry span per stage, a
// StepState per stage (pending, active, completed, failed, skipped) and
// stage metrics when an AnalyticsMetrics is attached:
//
//	reg := operations.NewRegistry[[]domain.PickEvent]()
//	_ = reg.Register(operations.NewStage("drop_records", "Drop records", dropRecords))
//	_ = reg.Register(operations.NewStage("clean_columns", "Clean columns", cleanColumns))
//
//	p := operations.NewPipeline("picking.clean", reg, operations.WithLogger(logger))
//	out, run, err := p.Run(ctx, events)
//
// A failing stage stops the run; later stages are marked skipped and the
// error is returned as an *OperationError naming the stage.
package operations
