// Package tx holds the transaction contract the domain services are written
// against. storage/postgres.TxManager implements it; txtest fakes it.
package tx

import "context"

// Manager runs work atomically. The ctx handed to fn carries the open
// transaction and must reach every repository call made inside.
// fn commits when it returns nil and rolls back on an error or panic. A call made with a ctx already inside a transaction
// joins it instead of opening another, so a sale and its stock movements share
// one commit.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions, used by the reports queries to
// read several tables from a single snapshot.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Run is RunInTransaction for work that produces a value. The value is
// returned only when the transaction commits.
func Run[T any](ctx context.Context, m Manager, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
