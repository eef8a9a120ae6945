// Package register_repo provides the PostgreSQL stock register: the lockable
// stock level of each product and the append-only movement log.
package register_repo

import (
	"context"
	"fmt"
	"math"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain/stock"
	"shoppos/internal/infrastructure/storage/postgres"
)

const (
	productsTable       = "products"
	stockMovementsTable = "stock_movements"
)

var movementColumns = []string{
	"id", "product_id", "movement_type", "quantity", "bill_id", "notes", "created_by", "created_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LockLevels reads and locks the stock rows of productIDs. ORDER BY id makes
// PostgreSQL take the row locks in ascending id order.
func (r *StockRepo) LockLevels(ctx context.Context, productIDs []id.ID) (map[id.ID]*stock.Level, error) {
	if len(productIDs) == 0 {
		return map[id.ID]*stock.Level{}, nil
	}
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock stock levels requires transaction context")
	}

	sql, args, err := lockLevelsQuery(r.builder, productIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock query: %w", err)
	}

	var levels []*stock.Level
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &levels, sql, args...); err != nil {
		return nil, fmt.Errorf("lock stock levels: %w", postgres.TranslateError(err))
	}

	out := make(map[id.ID]*stock.Level, len(levels))
	for _, l := range levels {
		out[l.ProductID] = l
	}
	return out, nil
}

func lockLevelsQuery(b squirrel.StatementBuilderType, productIDs []id.ID) squirrel.SelectBuilder {
	return b.Select("id", "name", "price", "stock_quantity", "reorder_level", "is_active").
		From(productsTable).
		Where(squirrel.Eq{"id": productIDs}).
		OrderBy("id").
		Suffix("FOR UPDATE")
}

const applyDeltasSQL = `
	UPDATE products AS p
	SET stock_quantity = p.stock_quantity + d.delta,
	    updated_at = NOW()
	FROM (SELECT unnest($1::uuid[]) AS id, unnest($2::int[]) AS delta) AS d
	WHERE p.id = d.id
	RETURNING p.id, p.stock_quantity`

// ApplyDeltas adds every delta in one statement. The products check
// constraint rejects a negative result.
func (r *StockRepo) ApplyDeltas(ctx context.Context, deltas map[id.ID]int) (map[id.ID]int, error) {
	if len(deltas) == 0 {
		return map[id.ID]int{}, nil
	}

	ids := stock.SortedIDs(deltas)
	idArgs := make([]string, len(ids))
	deltaArgs := make([]int32, len(ids))
	for i, pid := range ids {
		d := deltas[pid]
		if d > math.MaxInt32 || d < math.MinInt32 {
			return nil, apperror.NewValidation("stock delta is out of range").WithDetail("product_id", pid.String())
		}
		idArgs[i] = pid.String()
		deltaArgs[i] = int32(d)
	}

	var rows []struct {
		ID            id.ID `db:"id"`
		StockQuantity int   `db:"stock_quantity"`
	}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, applyDeltasSQL, idArgs, deltaArgs); err != nil {
		return nil, fmt.Errorf("apply stock deltas: %w", postgres.TranslateError(err))
	}
	if len(rows) != len(ids) {
		return nil, apperror.NewNotFound("product", "")
	}

	out := make(map[id.ID]int, len(rows))
	for _, row := range rows {
		out[row.ID] = row.StockQuantity
	}
	return out, nil
}

// AppendMovements inserts movements with COPY.
func (r *StockRepo) AppendMovements(ctx context.Context, movements []*stock.Movement) error {
	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.ID, m.ProductID, string(m.MovementType), m.Quantity, m.BillID, m.Notes, m.CreatedBy, m.CreatedAt,
		})
	}
	if _, err := r.txManager.CopyRows(ctx, stockMovementsTable, movementColumns, rows); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}
	return nil
}

// ListMovements returns movements newest first with product and creator names.
func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]*stock.Movement, error) {
	q := r.builder.
		Select(
			"m.id", "m.product_id", "m.movement_type", "m.quantity", "m.bill_id", "m.notes",
			"m.created_by", "m.created_at", "p.name AS product_name", "u.name AS created_by_name",
		).
		From(stockMovementsTable+" m").
		Join("products p ON p.id = m.product_id").
		LeftJoin("users u ON u.id = m.created_by").
		OrderBy("m.created_at DESC", "m.id DESC")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"m.product_id": *filter.ProductID})
	}
	if filter.BillID != nil {
		q = q.Where(squirrel.Eq{"m.bill_id": *filter.BillID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	movements := make([]*stock.Movement, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", postgres.TranslateError(err))
	}
	return movements, nil
}
