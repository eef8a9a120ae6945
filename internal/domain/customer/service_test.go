package customer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx/txtest"
	"shoppos/internal/domain"
)

type memRepo struct {
	items map[id.ID]*Customer
}

func (r *memRepo) Create(_ context.Context, c *Customer) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, cid id.ID) (*Customer, error) {
	c, ok := r.items[cid]
	if !ok {
		return nil, apperror.NewNotFound("record", "")
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, c *Customer) error {
	existing := r.items[c.ID]
	cp := *c
	cp.TotalPurchases = existing.TotalPurchases
	cp.LoyaltyPoints = existing.LoyaltyPoints
	r.items[c.ID] = &cp
	return nil
}

func (r *memRepo) Deactivate(_ context.Context, cid id.ID) error {
	r.items[cid].IsActive = false
	return nil
}

func (r *memRepo) List(_ context.Context, f domain.ListFilter) (domain.ListResult[*Customer], error) {
	var out []*Customer
	for _, c := range r.items {
		out = append(out, c)
	}
	return domain.ListResult[*Customer]{Items: out, Limit: f.Limit}, nil
}

func (r *memRepo) RecordPurchase(_ context.Context, cid id.ID, amount decimal.Decimal, points int) error {
	c, ok := r.items[cid]
	if !ok {
		return apperror.NewNotFound("customer", cid.String())
	}
	c.TotalPurchases = c.TotalPurchases.Add(amount)
	c.LoyaltyPoints += points
	return nil
}

func ptr(s string) *string { return &s }

func TestService_CreateAndUpdate(t *testing.T) {
	repo := &memRepo{items: make(map[id.ID]*Customer)}
	svc := NewService(repo, &txtest.Manager{})
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, Input{Name: "Asha Rao", Phone: ptr("+91 98450 12345"), Email: ptr(" asha@example.com ")})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", *c.Email)
	assert.True(t, c.TotalPurchases.IsZero())

	require.NoError(t, repo.RecordPurchase(ctx, c.ID, decimal.NewFromInt(250), 2))

	updated, err := svc.UpdateCustomer(ctx, c.ID, Input{Name: "Asha R.", Phone: ptr("9845012345")})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	assert.Equal(t, "250", repo.items[c.ID].TotalPurchases.String())
	assert.Equal(t, 2, repo.items[c.ID].LoyaltyPoints)
}

func TestService_Validation(t *testing.T) {
	svc := NewService(&memRepo{items: make(map[id.ID]*Customer)}, &txtest.Manager{})

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"blank name", Input{Name: ""}, "name"},
		{"bad phone", Input{Name: "A", Phone: ptr("call me")}, "phone"},
		{"bad email", Input{Name: "A", Email: ptr("not-an-email")}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(context.Background(), tt.in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestService_UpdateUnknown(t *testing.T) {
	svc := NewService(&memRepo{items: make(map[id.ID]*Customer)}, &txtest.Manager{})

	_, err := svc.UpdateCustomer(context.Background(), id.New(), Input{Name: "X"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestLoyaltyPointsFor(t *testing.T) {
	tests := []struct {
		total string
		want  int
	}{
		{"0", 0},
		{"99.99", 0},
		{"100", 1},
		{"236", 2},
		{"1999.50", 19},
		{"-50", 0},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, LoyaltyPointsFor(decimal.RequireFromString(tt.total)))
		})
	}
}
