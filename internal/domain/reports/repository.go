package reports

import (
	"context"
	"time"
)

// Repository runs the aggregation queries.
type Repository interface {
	SalesReport(ctx context.Context, filter SalesFilter) ([]*SalesRow, error)
	Dashboard(ctx context.Context, recent int) (*Dashboard, error)
	LowStock(ctx context.Context, limit int) ([]*LowStockItem, error)
}

// Cache is a read-through store for report results. Invalidate drops every
// cached report at once.
type Cache interface {
	// Get decodes the cached value of key into dest. ok is false on a miss.
	Get(ctx context.Context, key string, dest any) (ok bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (NopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (NopCache) Invalidate(context.Context) error                      { return nil }
