package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
)

type stubRepo struct {
	salesCalls     int
	dashboardCalls int
	rows           []*SalesRow
	lastFilter     SalesFilter
	lastLimit      int
}

func (r *stubRepo) SalesReport(_ context.Context, f SalesFilter) ([]*SalesRow, error) {
	r.salesCalls++
	r.lastFilter = f
	return r.rows, nil
}

func (r *stubRepo) Dashboard(context.Context, int) (*Dashboard, error) {
	r.dashboardCalls++
	return &Dashboard{TotalProducts: 7}, nil
}

func (r *stubRepo) LowStock(_ context.Context, limit int) ([]*LowStockItem, error) {
	r.lastLimit = limit
	return nil, nil
}

// jsonCache stores JSON like the redis cache does.
type jsonCache struct {
	data    map[string][]byte
	failGet bool
}

func newJSONCache() *jsonCache { return &jsonCache{data: make(map[string][]byte)} }

func (c *jsonCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *jsonCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *jsonCache) Invalidate(context.Context) error {
	c.data = make(map[string][]byte)
	return nil
}

func TestSalesReport_TotalsAndCache(t *testing.T) {
	repo := &stubRepo{rows: []*SalesRow{
		{Period: "2026-10-17", TotalBills: 2, Subtotal: decimal.NewFromInt(300), TotalTax: decimal.NewFromInt(54), TotalSales: decimal.NewFromInt(354)},
		{Period: "2026-10-18", TotalBills: 1, Subtotal: decimal.NewFromInt(200), TotalDiscount: decimal.NewFromInt(10), TotalTax: decimal.NewFromInt(36), TotalSales: decimal.NewFromInt(226)},
	}}
	cache := newJSONCache()
	svc := NewService(repo, cache, time.Minute)
	ctx := context.Background()

	report, err := svc.SalesReport(ctx, SalesFilter{})
	require.NoError(t, err)
	assert.Equal(t, GroupByDay, report.GroupBy)
	assert.Equal(t, int64(3), report.Totals.TotalBills)
	assert.Equal(t, "580", report.Totals.TotalSales.String())

	again, err := svc.SalesReport(ctx, SalesFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.salesCalls, "second read served from cache")
	assert.Equal(t, "580", again.Totals.TotalSales.String())

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.SalesReport(ctx, SalesFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.salesCalls)
}

func TestSalesReport_InvalidRange(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, 0)
	start := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := svc.SalesReport(context.Background(), SalesFilter{Start: &start, End: &end})
	assert.True(t, apperror.IsValidation(err))
}

func TestDashboard_CacheFailureFallsThrough(t *testing.T) {
	repo := &stubRepo{}
	cache := newJSONCache()
	cache.failGet = true
	svc := NewService(repo, cache, time.Minute)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.TotalProducts)
	assert.Equal(t, 1, repo.dashboardCalls)
}

func TestLowStock_ClampsLimit(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, 0)

	items, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, defaultLowStockLimit, repo.lastLimit)
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupByDay, g)

	g, err = ParseGroupBy("month")
	require.NoError(t, err)
	assert.Equal(t, "YYYY-MM", g.Pattern())

	_, err = ParseGroupBy("week")
	assert.True(t, apperror.IsValidation(err))
}
