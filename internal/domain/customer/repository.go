package customer

import (
	"context"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/id"
	"shoppos/internal/domain"
)

// Repository defines customer persistence.
// Update never writes total_purchases or loyalty_points.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// List searches name, phone and email.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)

	// RecordPurchase atomically increments the purchase aggregate
	// (total_purchases = total_purchases + amount). Returns NOT_FOUND when the
	// customer does not exist.
	RecordPurchase(ctx context.Context, customerID id.ID, amount decimal.Decimal, points int) error
}
