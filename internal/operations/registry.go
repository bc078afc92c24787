package operations

import (
	"fmt"
	"sync"
)

// Registry holds stages in registration order
type Registry[T any] struct {
	mu     sync.RWMutex
	stages map[string]Stage[T]
	order  []string
}

// NewRegistry creates an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		stages: make(map[string]Stage[T]),
		order:  make([]string, 0),
	}
}

// Register appends a stage
func (r *Registry[T]) Register(stage Stage[T]) error {
	if stage == nil {
		return fmt.Errorf("cannot register nil stage")
	}

	id := stage.ID()
	if id == "" {
		return fmt.Errorf("stage ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[id]; exists {
		return fmt.Errorf("stage with ID %s already registered", id)
	}

	r.stages[id] = stage
	r.order = append(r.order, id)
	return nil
}

// MustRegister is Register for static pipeline definitions
func (r *Registry[T]) MustRegister(stages ...Stage[T]) *Registry[T] {
	for _, s := range stages {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Unregister removes a stage
func (r *Registry[T]) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[id]; !exists {
		return fmt.Errorf("stage with ID %s not found", id)
	}

	delete(r.stages, id)

	newOrder := make([]string, 0, len(r.order)-1)
	for _, stageID := range r.order {
		if stageID != id {
			newOrder = append(newOrder, stageID)
		}
	}
	r.order = newOrder
	return nil
}

// Get retrieves a stage by ID
func (r *Registry[T]) Get(id string) (Stage[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stage, exists := r.stages[id]
	if !exists {
		return nil, fmt.Errorf("stage with ID %s not found", id)
	}
	return stage, nil
}

// Has checks if a stage is registered
func (r *Registry[T]) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.stages[id]
	return exists
}

// List returns all registered stages in registration order
func (r *Registry[T]) List() []Stage[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]Stage[T], 0, len(r.order))
	for _, id := range r.order {
		stages = append(stages, r.stages[id])
	}
	return stages
}

// ListIDs returns all registered stage IDs in registration order
func (r *Registry[T]) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered stages
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stages)
}
