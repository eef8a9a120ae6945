package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// HookEvent is a point in an entity's lifecycle where hooks run.
type HookEvent uint8

const (
	// WithinCreate runs inside the create transaction, after the insert.
	// An error rolls the create back.
	WithinCreate HookEvent = iota + 1
	AfterCreate
	AfterUpdate
	AfterDelete
)

func (e HookEvent) String() string {
	switch e {
	case WithinCreate:
		return "within_create"
	case AfterCreate:
		return "after_create"
	case AfterUpdate:
		return "after_update"
	case AfterDelete:
		return "after_delete"
	}
	return fmt.Sprintf("hook_event(%d)", uint8(e))
}

// transactional events abort on the first failing hook.
func (e HookEvent) transactional() bool {
	return e == WithinCreate
}

// Hook reacts to a lifecycle event of entity.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry holds the hooks of one entity type. Registration normally
// happens during wiring, but is safe at any time.
type HookRegistry[T any] struct {
	mu    sync.RWMutex
	hooks map[HookEvent][]Hook[T]
}

func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{hooks: make(map[HookEvent][]Hook[T])}
}

// On appends hook to the hooks of event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.mu.Lock()
	r.hooks[event] = append(r.hooks[event], hook)
	r.mu.Unlock()
}

// Run calls the hooks of event in registration order. Transactional events
// stop at the first error. Post-commit events run every hook, since the
// change is already durable, and return the joined failures.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	r.mu.RLock()
	hooks := r.hooks[event]
	r.mu.RUnlock()

	var errs []error
	for i, hook := range hooks {
		if err := hook(ctx, entity); err != nil {
			if event.transactional() {
				return err
			}
			errs = append(errs, fmt.Errorf("%s hook #%d: %w", event, i+1, err))
		}
	}
	return errors.Join(errs...)
}
