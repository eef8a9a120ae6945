// Package catalog_repo provides PostgreSQL implementations for the master
// data repositories: products, categories and customers.
package catalog_repo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/infrastructure/storage/postgres"
)

// TableConfig describes how an entity maps to its table.
type TableConfig struct {
	Table string
	// Alias qualifies columns so joins can be added without ambiguity.
	Alias string
	// Columns are the persisted columns. Defaults to the entity's db tags
	// minus ReadOnly.
	Columns []string
	// ReadOnly are db tags populated by joins, never written.
	ReadOnly []string
	// Immutable columns are written by Create but never by Update.
	// id and created_at are always immutable.
	Immutable []string
	// Joins adds joined columns to every SELECT.
	Joins func(q squirrel.SelectBuilder) squirrel.SelectBuilder
	// JoinedCols are the expressions selected from joined tables.
	JoinedCols []string
}

// BaseCatalogRepo provides common CRUD operations for soft-deletable master data.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager *postgres.TxManager
	cfg       TableConfig
	newFn     func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](txManager *postgres.TxManager, cfg TableConfig, newFn func() T) *BaseCatalogRepo[T] {
	if cfg.Columns == nil {
		cfg.Columns = postgres.ExtractDBColumns[T]()
	}
	cfg.Columns = slices.DeleteFunc(slices.Clone(cfg.Columns), func(c string) bool {
		return slices.Contains(cfg.ReadOnly, c)
	})
	if cfg.Alias == "" {
		cfg.Alias = cfg.Table
	}
	return &BaseCatalogRepo[T]{txManager: txManager, cfg: cfg, newFn: newFn}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// col qualifies a column with the table alias.
func (r *BaseCatalogRepo[T]) col(name string) string {
	return r.cfg.Alias + "." + name
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := r.columnValues(entity, nil)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := r.Builder().
		Insert(r.cfg.Table).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	return nil
}

// Update writes every mutable column of entity.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	skip := append([]string{"id", "created_at"}, r.cfg.Immutable...)
	data := r.columnValues(entity, skip)
	entityID, ok := postgres.StructToMap(entity)["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	if _, ok := data["updated_at"]; ok {
		data["updated_at"] = time.Now().UTC()
	}

	sql, args, err := r.Builder().
		Update(r.cfg.Table).
		SetMap(data).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("record", entityID)
	}
	return nil
}

// columnValues returns the persisted column values of entity, minus skip.
func (r *BaseCatalogRepo[T]) columnValues(entity T, skip []string) map[string]any {
	all := postgres.StructToMap(entity)
	data := make(map[string]any, len(r.cfg.Columns))
	for _, col := range r.cfg.Columns {
		if slices.Contains(skip, col) {
			continue
		}
		if val, ok := all[col]; ok {
			data[col] = val
		}
	}
	return data
}

// baseSelect creates a SELECT builder including joined columns.
func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.cfg.Columns)+len(r.cfg.JoinedCols))
	for _, c := range r.cfg.Columns {
		cols = append(cols, r.col(c))
	}
	cols = append(cols, r.cfg.JoinedCols...)

	from := r.cfg.Table
	if r.cfg.Alias != r.cfg.Table {
		from += " " + r.cfg.Alias
	}
	q := r.Builder().Select(cols...).From(from)
	if r.cfg.Joins != nil {
		q = r.cfg.Joins(q)
	}
	return q
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{r.col("id"): entityID}).Limit(1))
}

// FindOne executes a SELECT query and returns a single entity.
// A miss is NOT_FOUND("record"); services name the entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound("record", "")
		}
		return entity, fmt.Errorf("get %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	return entity, nil
}

// FindAll executes a SELECT query and returns all rows.
func (r *BaseCatalogRepo[T]) FindAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]T, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	return items, nil
}

// Count returns the number of rows matched by q, ignoring its ordering and
// pagination.
func (r *BaseCatalogRepo[T]) Count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q.RemoveLimit().RemoveOffset(), "sub").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	return total, nil
}

// Deactivate performs a soft delete.
func (r *BaseCatalogRepo[T]) Deactivate(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().
		Update(r.cfg.Table).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", r.cfg.Table, postgres.TranslateError(err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("record", entityID.String())
	}
	return nil
}

// paginate applies limit and offset.
func paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
