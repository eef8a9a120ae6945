package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain"
	"shoppos/internal/domain/customer"
	"shoppos/internal/infrastructure/storage/postgres"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, TableConfig{
			Table:     "customers",
			Immutable: []string{"total_purchases", "loyalty_points"},
		}, func() *customer.Customer { return new(customer.Customer) }),
	}
}

// List searches name, phone and email.
func (r *CustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	filter = filter.Normalize()
	result := domain.ListResult[*customer.Customer]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect()
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"phone": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	total, err := r.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	items, err := r.FindAll(ctx, paginate(q.OrderBy("name ASC", "id ASC"), filter.Limit, filter.Offset))
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// RecordPurchase increments the purchase aggregate in a single statement, so
// concurrent bills for the same customer never lose an update.
func (r *CustomerRepo) RecordPurchase(ctx context.Context, customerID id.ID, amount decimal.Decimal, points int) error {
	sql, args, err := r.Builder().
		Update("customers").
		Set("total_purchases", squirrel.Expr("total_purchases + ?", amount)).
		Set("loyalty_points", squirrel.Expr("loyalty_points + ?", points)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": customerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record purchase: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("record purchase: %w", postgres.TranslateError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}
