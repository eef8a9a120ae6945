package catalog

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx/txtest"
)

type memCategories struct {
	items map[id.ID]*Category
}

func (r *memCategories) Create(_ context.Context, c *Category) error {
	for _, existing := range r.items {
		if existing.Name == c.Name {
			return apperror.NewConflict("unique constraint violated")
		}
	}
	r.items[c.ID] = c
	return nil
}

func (r *memCategories) GetByID(_ context.Context, cid id.ID) (*Category, error) {
	c, ok := r.items[cid]
	if !ok {
		return nil, apperror.NewNotFound("record", "")
	}
	cp := *c
	return &cp, nil
}

func (r *memCategories) Update(_ context.Context, c *Category) error {
	r.items[c.ID] = c
	return nil
}

func (r *memCategories) Deactivate(_ context.Context, cid id.ID) error {
	r.items[cid].IsActive = false
	return nil
}

func (r *memCategories) List(_ context.Context, includeInactive bool) ([]*Category, error) {
	var out []*Category
	for _, c := range r.items {
		if includeInactive || c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestCategoryService_Lifecycle(t *testing.T) {
	repo := &memCategories{items: make(map[id.ID]*Category)}
	svc := NewCategoryService(repo, &txtest.Manager{})
	ctx := context.Background()

	grocery, err := svc.CreateCategory(ctx, "Grocery", nil)
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "Beverages", nil)
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "Grocery", nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = svc.CreateCategory(ctx, "   ", nil)
	assert.True(t, apperror.IsValidation(err))

	desc := "Staples"
	renamed, err := svc.UpdateCategory(ctx, grocery.ID, "Groceries", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", renamed.Name)

	require.NoError(t, svc.Deactivate(ctx, grocery.ID))

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Beverages", active[0].Name)
}
