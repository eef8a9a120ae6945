package txtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RollbackRestoresSnapshot(t *testing.T) {
	state := 1
	m := &Manager{Snapshot: func() func() {
		saved := state
		return func() { state = saved }
	}}

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		state = 2
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, state)
	assert.Equal(t, 1, m.Rollbacks)
	assert.Equal(t, 0, m.Commits)
}

func TestManager_NestedReusesOuter(t *testing.T) {
	m := &Manager{}

	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		return m.RunInTransaction(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Equal(t, 1, m.Begins)
	assert.Equal(t, 1, m.Commits)
}

func TestManager_PanicRollsBackAndRepanics(t *testing.T) {
	state := "clean"
	m := &Manager{Snapshot: func() func() {
		saved := state
		return func() { state = saved }
	}}

	assert.Panics(t, func() {
		_ = m.RunInTransaction(context.Background(), func(ctx context.Context) error {
			state = "dirty"
			panic("boom")
		})
	})
	assert.Equal(t, "clean", state)
	assert.Equal(t, 1, m.Rollbacks)
}
