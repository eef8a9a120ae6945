// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shoppos/internal/domain/reports"
	"shoppos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// salesQuery groups bills by the to_char label of their creation time.
// Bounds compare whole days so End includes every bill of that date.
func (r *ReportRepo) salesQuery(filter reports.SalesFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select().
		Column(squirrel.Expr("to_char(created_at, ?) AS period", filter.GroupBy.Pattern())).
		Columns(
			"COUNT(*) AS total_bills",
			"COALESCE(SUM(subtotal), 0) AS subtotal",
			"COALESCE(SUM(discount), 0) AS total_discount",
			"COALESCE(SUM(tax), 0) AS total_tax",
			"COALESCE(SUM(total_amount), 0) AS total_sales",
		).
		From("bills").
		GroupBy("period").
		OrderBy("period ASC")

	if filter.Start != nil {
		q = q.Where("created_at::date >= ?::date", filter.Start.Format("2006-01-02"))
	}
	if filter.End != nil {
		q = q.Where("created_at::date <= ?::date", filter.End.Format("2006-01-02"))
	}
	return q
}

// SalesReport returns one row per period, oldest first.
func (r *ReportRepo) SalesReport(ctx context.Context, filter reports.SalesFilter) ([]*reports.SalesRow, error) {
	sql, args, err := r.salesQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]*reports.SalesRow, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales report: %w", postgres.TranslateError(err))
	}
	return rows, nil
}

const dashboardCountsQuery = `
	SELECT
		(SELECT COUNT(*) FROM products WHERE is_active) AS total_products,
		(SELECT COUNT(*) FROM products WHERE is_active AND stock_quantity <= reorder_level) AS low_stock_count,
		(SELECT COUNT(*) FROM customers WHERE is_active) AS total_customers
`

const periodSalesQuery = `
	SELECT COUNT(*) AS total_bills, COALESCE(SUM(total_amount), 0) AS total_sales
	FROM bills
	WHERE created_at >= date_trunc($1, NOW())
`

// Dashboard assembles the landing page summary in one read-only transaction.
func (r *ReportRepo) Dashboard(ctx context.Context, recent int) (*reports.Dashboard, error) {
	d := &reports.Dashboard{RecentBills: make([]*reports.RecentBill, 0)}

	err := r.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		q := r.txManager.GetQuerier(ctx)

		if err := pgxscan.Get(ctx, q, &d.TodaySales, periodSalesQuery, "day"); err != nil {
			return fmt.Errorf("today sales: %w", err)
		}
		if err := pgxscan.Get(ctx, q, &d.MonthlySales, periodSalesQuery, "month"); err != nil {
			return fmt.Errorf("monthly sales: %w", err)
		}
		if err := q.QueryRow(ctx, dashboardCountsQuery).Scan(&d.TotalProducts, &d.LowStockCount, &d.TotalCustomers); err != nil {
			return fmt.Errorf("dashboard counts: %w", err)
		}

		sql, args, err := r.builder.
			Select("b.id", "b.bill_number", "c.name AS customer_name", "b.total_amount", "b.created_at").
			From("bills b").
			LeftJoin("customers c ON c.id = b.customer_id").
			OrderBy("b.created_at DESC", "b.id DESC").
			Limit(uint64(recent)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}
		if err := pgxscan.Select(ctx, q, &d.RecentBills, sql, args...); err != nil {
			return fmt.Errorf("recent bills: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, postgres.TranslateError(err)
	}
	return d, nil
}

// LowStock lists active products at or below their reorder level, emptiest first.
func (r *ReportRepo) LowStock(ctx context.Context, limit int) ([]*reports.LowStockItem, error) {
	sql, args, err := r.builder.
		Select("p.id", "p.name", "p.barcode", "c.name AS category_name", "p.stock_quantity", "p.reorder_level", "p.unit").
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where("p.is_active").
		Where("p.stock_quantity <= p.reorder_level").
		OrderBy("p.stock_quantity ASC", "p.name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]*reports.LowStockItem, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", postgres.TranslateError(err))
	}
	return items, nil
}
