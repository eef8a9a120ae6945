package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookRegistry_TransactionalStopsAtFirstError(t *testing.T) {
	r := NewHookRegistry[string]()
	var calls []string
	r.On(WithinCreate, func(context.Context, string) error { calls = append(calls, "a"); return errors.New("no stock row") })
	r.On(WithinCreate, func(context.Context, string) error { calls = append(calls, "b"); return nil })

	err := r.Run(context.Background(), WithinCreate, "p-1")

	assert.EqualError(t, err, "no stock row")
	assert.Equal(t, []string{"a"}, calls)
}

func TestHookRegistry_PostCommitRunsEveryHook(t *testing.T) {
	r := NewHookRegistry[string]()
	var calls []string
	cacheDown := errors.New("cache down")
	r.On(AfterCreate, func(context.Context, string) error { calls = append(calls, "invalidate"); return cacheDown })
	r.On(AfterCreate, func(context.Context, string) error { calls = append(calls, "notify"); return nil })

	err := r.Run(context.Background(), AfterCreate, "INV-000001")

	assert.ErrorIs(t, err, cacheDown)
	assert.Contains(t, err.Error(), "after_create hook #1")
	assert.Equal(t, []string{"invalidate", "notify"}, calls)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0, 50))
	assert.Equal(t, 20, ClampLimit(20, 50))
	assert.Equal(t, MaxLimit, ClampLimit(10_000, 50))

	f := ListFilter{Offset: -3}.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Zero(t, f.Offset)
}
