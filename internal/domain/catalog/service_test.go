package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx/txtest"
	"shoppos/internal/domain"
)

type memProducts struct {
	items map[id.ID]*Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: make(map[id.ID]*Product)}
}

func (r *memProducts) Create(_ context.Context, p *Product) error {
	if p.Barcode != nil {
		for _, existing := range r.items {
			if existing.Barcode != nil && *existing.Barcode == *p.Barcode {
				return apperror.NewConflict("unique constraint violated")
			}
		}
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProducts) GetByID(_ context.Context, pid id.ID) (*Product, error) {
	p, ok := r.items[pid]
	if !ok {
		return nil, apperror.NewNotFound("record", "")
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) Update(_ context.Context, p *Product) error {
	existing, ok := r.items[p.ID]
	if !ok {
		return apperror.NewNotFound("record", "")
	}
	cp := *p
	cp.StockQuantity = existing.StockQuantity
	r.items[p.ID] = &cp
	return nil
}

func (r *memProducts) Deactivate(_ context.Context, pid id.ID) error {
	p, ok := r.items[pid]
	if !ok {
		return apperror.NewNotFound("record", "")
	}
	p.IsActive = false
	return nil
}

func (r *memProducts) GetByBarcode(_ context.Context, barcode string) (*Product, error) {
	for _, p := range r.items {
		if p.Barcode != nil && *p.Barcode == barcode && p.IsActive {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("record", "")
}

func (r *memProducts) List(_ context.Context, f ProductFilter) (domain.ListResult[*Product], error) {
	var out []*Product
	for _, p := range r.items {
		if !f.IncludeInactive && !p.IsActive {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	return domain.ListResult[*Product]{Items: out, TotalCount: int64(len(out)), Limit: f.Limit}, nil
}

type stockRecorder struct {
	calls []int
	err   error
}

func (s *stockRecorder) RecordInitialStock(_ context.Context, _ id.ID, qty int, _ *id.ID) error {
	s.calls = append(s.calls, qty)
	return s.err
}

func ptr[T any](v T) *T { return &v }

func TestProductService_CreateRecordsInitialStock(t *testing.T) {
	repo := newMemProducts()
	stock := &stockRecorder{}
	txm := &txtest.Manager{}
	svc := NewProductService(repo, txm, stock)

	p, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:          "  Basmati Rice 5kg ",
		Barcode:       ptr("8901234567890"),
		Price:         decimal.RequireFromString("450"),
		CostPrice:     decimal.RequireFromString("380"),
		StockQuantity: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, "Basmati Rice 5kg", p.Name)
	assert.Equal(t, DefaultReorderLevel, p.ReorderLevel)
	assert.Equal(t, DefaultUnit, p.Unit)
	assert.True(t, p.IsActive)
	assert.Equal(t, []int{40}, stock.calls)
	assert.Equal(t, 1, txm.Commits)
}

func TestProductService_CreateRollsBackWhenStockLogFails(t *testing.T) {
	repo := newMemProducts()
	txm := &txtest.Manager{Snapshot: func() func() {
		saved := make(map[id.ID]*Product, len(repo.items))
		for k, v := range repo.items {
			saved[k] = v
		}
		return func() { repo.items = saved }
	}}
	svc := NewProductService(repo, txm, &stockRecorder{err: errors.New("insert failed")})

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Tea", Price: decimal.NewFromInt(5), StockQuantity: 3})
	require.Error(t, err)
	assert.Empty(t, repo.items)
}

func TestProductService_Validation(t *testing.T) {
	svc := NewProductService(newMemProducts(), &txtest.Manager{}, nil)

	tests := []struct {
		name  string
		in    ProductInput
		field string
	}{
		{"blank name", ProductInput{Name: " ", Price: decimal.NewFromInt(1)}, "name"},
		{"negative price", ProductInput{Name: "A", Price: decimal.NewFromInt(-1)}, "price"},
		{"negative cost", ProductInput{Name: "A", Price: decimal.NewFromInt(1), CostPrice: decimal.NewFromInt(-1)}, "cost_price"},
		{"negative stock", ProductInput{Name: "A", Price: decimal.NewFromInt(1), StockQuantity: -1}, "stock_quantity"},
		{"negative reorder", ProductInput{Name: "A", Price: decimal.NewFromInt(1), ReorderLevel: ptr(-1)}, "reorder_level"},
		{"short barcode", ProductInput{Name: "A", Price: decimal.NewFromInt(1), Barcode: ptr("12")}, "barcode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tt.in)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestProductService_DuplicateBarcode(t *testing.T) {
	svc := NewProductService(newMemProducts(), &txtest.Manager{}, nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "A", Price: decimal.NewFromInt(1), Barcode: ptr("12345")})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "B", Price: decimal.NewFromInt(1), Barcode: ptr("12345")})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestProductService_UpdateKeepsStock(t *testing.T) {
	repo := newMemProducts()
	svc := NewProductService(repo, &txtest.Manager{}, nil)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Oil 1L", Price: decimal.NewFromInt(120), StockQuantity: 8})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Sunflower Oil 1L", Price: decimal.NewFromInt(125), StockQuantity: 999})
	require.NoError(t, err)

	assert.Equal(t, "Sunflower Oil 1L", updated.Name)
	assert.Equal(t, 8, repo.items[p.ID].StockQuantity)
}

func TestProductService_DeactivateAndNotFound(t *testing.T) {
	repo := newMemProducts()
	svc := NewProductService(repo, &txtest.Manager{}, nil)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Soap", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, p.ID))
	assert.False(t, repo.items[p.ID].IsActive)

	missing := id.New()
	err = svc.Deactivate(ctx, missing)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Contains(t, appErr.Message, "product")
}

func TestProductService_GetByBarcode(t *testing.T) {
	svc := NewProductService(newMemProducts(), &txtest.Manager{}, nil)

	_, err := svc.GetByBarcode(context.Background(), "0000")
	assert.True(t, apperror.IsNotFound(err))
}

func TestProductService_ListClampsLimit(t *testing.T) {
	svc := NewProductService(newMemProducts(), &txtest.Manager{}, nil)

	res, err := svc.List(context.Background(), ProductFilter{Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLimit, res.Limit)
}
