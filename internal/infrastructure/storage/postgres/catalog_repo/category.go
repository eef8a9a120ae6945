package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shoppos/internal/domain/catalog"
	"shoppos/internal/infrastructure/storage/postgres"
)

// CategoryRepo implements catalog.CategoryRepository.
type CategoryRepo struct {
	*BaseCatalogRepo[*catalog.Category]
}

var _ catalog.CategoryRepository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, TableConfig{Table: "categories"},
			func() *catalog.Category { return new(catalog.Category) }),
	}
}

// List retrieves categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context, includeInactive bool) ([]*catalog.Category, error) {
	q := r.baseSelect().OrderBy("name ASC")
	if !includeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	return r.FindAll(ctx, q)
}
