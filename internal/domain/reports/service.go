package reports

import (
	"context"
	"fmt"
	"time"

	"shoppos/internal/core/apperror"
	"shoppos/internal/domain"
	"shoppos/pkg/logger"
)

const (
	recentBills          = 5
	defaultLowStockLimit = 100
)

// Service generates reports, serving repeated reads from the cache.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService creates a new reports service. A nil cache disables caching.
func NewService(repo Repository, cache Cache, ttl time.Duration) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// SalesReport aggregates bills per period.
func (s *Service) SalesReport(ctx context.Context, filter SalesFilter) (*SalesReport, error) {
	if filter.GroupBy == "" {
		filter.GroupBy = GroupByDay
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, apperror.NewValidation("end must not be before start")
	}

	key := fmt.Sprintf("sales:%s:%s:%s", filter.GroupBy, dayKey(filter.Start), dayKey(filter.End))
	return cached(ctx, s, key, func() (*SalesReport, error) {
		rows, err := s.repo.SalesReport(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("sales report: %w", err)
		}
		if rows == nil {
			rows = []*SalesRow{}
		}
		report := &SalesReport{GroupBy: filter.GroupBy, Start: filter.Start, End: filter.End, Rows: rows}
		report.Summarize()
		return report, nil
	})
}

// Dashboard returns today's and this month's sales, catalog counts and the
// most recent bills.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return cached(ctx, s, "dashboard", func() (*Dashboard, error) {
		d, err := s.repo.Dashboard(ctx, recentBills)
		if err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		return d, nil
	})
}

// LowStock lists active products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context, limit int) ([]*LowStockItem, error) {
	limit = domain.ClampLimit(limit, defaultLowStockLimit)
	return cached(ctx, s, fmt.Sprintf("low-stock:%d", limit), func() ([]*LowStockItem, error) {
		items, err := s.repo.LowStock(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("low stock report: %w", err)
		}
		if items == nil {
			items = []*LowStockItem{}
		}
		return items, nil
	})
}

// Invalidate drops all cached reports. Bill create and delete call it.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// cached serves key from the cache or computes and stores it. Cache failures
// degrade to a direct read.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var hit T
	ok, err := s.cache.Get(ctx, key, &hit)
	if err != nil {
		logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
	} else if ok {
		return hit, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
	}
	return value, nil
}

func dayKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}
