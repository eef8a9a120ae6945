// Package txtest provides an in-memory tx.Manager for unit tests.
package txtest

import (
	"context"

	"shoppos/internal/core/tx"
)

var _ tx.ReadOnlyManager = (*Manager)(nil)

type activeKey struct{}

// Manager runs fn directly. Snapshot is called before the outermost
// transaction starts; the returned restore func is called on error or panic,
// which lets in-memory fakes emulate rollback.
type Manager struct {
	Snapshot func() (restore func())

	Begins    int
	Commits   int
	Rollbacks int
}

// RunInTransaction implements tx.Manager.
func (m *Manager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(activeKey{}) != nil {
		return fn(ctx)
	}

	m.Begins++
	restore := func() {}
	if m.Snapshot != nil {
		restore = m.Snapshot()
	}

	defer func() {
		if p := recover(); p != nil {
			m.Rollbacks++
			restore()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, activeKey{}, true)); err != nil {
		m.Rollbacks++
		restore()
		return err
	}
	m.Commits++
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (m *Manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

// InTransaction reports whether ctx was produced by RunInTransaction.
func InTransaction(ctx context.Context) bool {
	return ctx.Value(activeKey{}) != nil
}
