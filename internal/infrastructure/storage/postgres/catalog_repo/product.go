package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shoppos/internal/domain"
	"shoppos/internal/domain/catalog"
	"shoppos/internal/infrastructure/storage/postgres"
)

const productTable = "products"

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	*BaseCatalogRepo[*catalog.Product]
}

var _ catalog.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, TableConfig{
			Table:     productTable,
			Alias:     "p",
			ReadOnly:  []string{"category_name"},
			Immutable: []string{"stock_quantity"},
			Joins: func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
				return q.LeftJoin("categories c ON c.id = p.category_id")
			},
			JoinedCols: []string{"c.name AS category_name"},
		}, func() *catalog.Product { return new(catalog.Product) }),
	}
}

// GetByBarcode retrieves an active product by barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return r.FindOne(ctx, r.baseSelect().
		Where(squirrel.Eq{"p.barcode": barcode, "p.is_active": true}).
		Limit(1))
}

// List retrieves products ordered by name.
func (r *ProductRepo) List(ctx context.Context, filter catalog.ProductFilter) (domain.ListResult[*catalog.Product], error) {
	result := domain.ListResult[*catalog.Product]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect()
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"p.is_active": true})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"p.category_id": *filter.CategoryID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"p.name": pattern},
			squirrel.ILike{"p.barcode": pattern},
		})
	}
	if filter.LowStock {
		q = q.Where("p.stock_quantity <= p.reorder_level")
	}

	total, err := r.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	items, err := r.FindAll(ctx, paginate(q.OrderBy("p.name ASC", "p.id ASC"), filter.Limit, filter.Offset))
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}
