// Package testutil provides stage fakes for pipeline tests.
package testutil

import (
	"context"
	"sync"
)

// MockStage is a configurable Stage with call tracking
type MockStage[T any] struct {
	IDValue   string
	NameValue string

	// ExecuteFunc defaults to returning the input unchanged
	ExecuteFunc func(ctx context.Context, in T) (T, error)

	mu           sync.Mutex
	ExecuteCalls int
	ExecuteArgs  []T
}

// NewMockStage creates a pass-through mock stage
func NewMockStage[T any](id string) *MockStage[T] {
	return &MockStage[T]{IDValue: id, NameValue: "Mock " + id}
}

// ID returns the configured id
func (m *MockStage[T]) ID() string { return m.IDValue }

// Name returns the configured name
func (m *MockStage[T]) Name() string { return m.NameValue }

// Execute records the call and runs ExecuteFunc
func (m *MockStage[T]) Execute(ctx context.Context, in T) (T, error) {
	m.mu.Lock()
	m.ExecuteCalls++
	m.ExecuteArgs = append(m.ExecuteArgs, in)
	fn := m.ExecuteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, in)
	}
	return in, nil
}

// Calls returns the number of Execute calls
func (m *MockStage[T]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// WithError makes the stage fail with err
func (m *MockStage[T]) WithError(err error) *MockStage[T] {
	m.ExecuteFunc = func(context.Context, T) (T, error) {
		var zero T
		return zero, err
	}
	return m
}

// WithFunc sets the stage body
func (m *MockStage[T]) WithFunc(fn func(ctx context.Context, in T) (T, error)) *MockStage[T] {
	m.ExecuteFunc = fn
	return m
}
