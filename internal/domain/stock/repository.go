package stock

import (
	"context"

	"shoppos/internal/core/id"
)

// Repository persists stock levels and movements.
// All mutating methods must run inside a transaction.
type Repository interface {
	// LockLevels reads the stock rows of productIDs with SELECT ... FOR UPDATE,
	// locking in ascending id order so concurrent callers cannot deadlock.
	// Missing products are absent from the result.
	LockLevels(ctx context.Context, productIDs []id.ID) (map[id.ID]*Level, error)

	// ApplyDeltas adds each signed delta to stock_quantity and returns the
	// resulting quantities.
	ApplyDeltas(ctx context.Context, deltas map[id.ID]int) (map[id.ID]int, error)

	// AppendMovements inserts movements. The log is never updated or deleted.
	AppendMovements(ctx context.Context, movements []*Movement) error

	// ListMovements returns movements newest first with product and creator names.
	ListMovements(ctx context.Context, filter MovementFilter) ([]*Movement, error)
}
