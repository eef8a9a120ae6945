package catalog

import (
	"context"

	"shoppos/internal/domain"
)

// ProductRepository defines product persistence.
// Update never writes stock_quantity; stock changes go through the stock log.
type ProductRepository interface {
	domain.CatalogRepository[*Product]

	// GetByBarcode retrieves an active product by barcode.
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// List retrieves products ordered by name.
	List(ctx context.Context, filter ProductFilter) (domain.ListResult[*Product], error)
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	domain.CatalogRepository[*Category]

	// List retrieves categories ordered by name.
	List(ctx context.Context, includeInactive bool) ([]*Category, error)
}
