package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/id"
)

// Repository persists bills and their items.
type Repository interface {
	// Create inserts the bill header and its items.
	Create(ctx context.Context, bill *Bill) error

	// GetByID returns the bill with customer and user names and its items in
	// line order. NOT_FOUND when absent.
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)

	// GetForUpdate locks the bill row and returns it with its items.
	// Must run inside a transaction.
	GetForUpdate(ctx context.Context, billID id.ID) (*Bill, error)

	// Delete removes the bill; items cascade. NOT_FOUND when no row was deleted.
	Delete(ctx context.Context, billID id.ID) error

	// List returns bills newest first with customer and user names.
	List(ctx context.Context, filter ListFilter) ([]*Bill, error)

	// TodaySummary aggregates bills created since local midnight.
	TodaySummary(ctx context.Context) (*DaySummary, error)
}

// CustomerLedger maintains the purchase aggregate of a customer.
type CustomerLedger interface {
	// RecordPurchase adds amount and points with a single atomic increment.
	RecordPurchase(ctx context.Context, customerID id.ID, amount decimal.Decimal, points int) error
}
