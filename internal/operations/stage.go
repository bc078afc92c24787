package operations

import (
	"context"
	"sync"
	"time"
)

// Stage is one step of a Pipeline over values of type T.
type Stage[T any] interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Execute returns the stage's output for in. It must not modify in.
	Execute(ctx context.Context, in T) (T, error)
}

// StageFunc adapts a plain function into a Stage.
type StageFunc[T any] struct {
	BaseStage
	fn func(ctx context.Context, in T) (T, error)
}

// NewStage wraps fn as a Stage.
func NewStage[T any](id, name string, fn func(ctx context.Context, in T) (T, error)) *StageFunc[T] {
	return &StageFunc[T]{BaseStage: NewBaseStage(id, name), fn: fn}
}

// Execute runs the wrapped function
func (s *StageFunc[T]) Execute(ctx context.Context, in T) (T, error) {
	return s.fn(ctx, in)
}

// BaseStage provides the identity half of a Stage.
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the stage ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the stage name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// StepStatus represents the current status of a stage
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a stage
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     error      `json:"-"`
	// Records in and out of the stage, when the value has a length
	InputCount  int `json:"input_count"`
	OutputCount int `json:"output_count"`
}

// NewStepState creates a new stage state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StepState) Start(inputCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
	s.InputCount = inputCount
}

// Complete marks the stage as completed and sets the end time
func (s *StepState) Complete(outputCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.OutputCount = outputCount
}

// Fail marks the stage as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
	if err != nil {
		s.Message = err.Error()
	}
}

// Skip marks the stage as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the stage execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
