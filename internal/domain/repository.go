// Package domain holds what the shop's master-data services share: paging,
// the soft-delete repository contract, lifecycle hooks and CatalogService.
package domain

import (
	"context"

	"shoppos/internal/core/entity"
	"shoppos/internal/core/id"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListFilter is the common list query for products, categories and customers.
type ListFilter struct {
	Search          string // ILIKE over name and contact columns
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Normalize applies the default and maximum page size.
func (f ListFilter) Normalize() ListFilter {
	f.Limit = ClampLimit(f.Limit, DefaultLimit)
	f.Offset = max(f.Offset, 0)
	return f
}

// ClampLimit maps a requested page size into [1, MaxLimit], using def for
// zero or negative requests.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxLimit)
}

// ListResult is one page plus the unpaged total.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository stores master data that bills refer to. Rows are never
// removed; Deactivate clears is_active.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)
	Update(ctx context.Context, entity T) error
	Deactivate(ctx context.Context, id id.ID) error
}
