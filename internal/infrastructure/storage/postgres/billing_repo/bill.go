// Package billing_repo provides the PostgreSQL bill repository.
package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
	"shoppos/internal/infrastructure/storage/postgres"
)

const (
	billsTable     = "bills"
	billItemsTable = "bill_items"
)

var billColumns = []string{
	"id", "bill_number", "customer_id", "user_id", "subtotal", "discount", "tax",
	"total_amount", "payment_method", "payment_status", "amount_paid", "notes", "created_at",
}

var itemColumns = []string{
	"id", "bill_id", "line_no", "product_id", "quantity", "unit_price", "discount", "tax", "total_price",
}

// BillRepo implements billing.Repository.
type BillRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ billing.Repository = (*BillRepo)(nil)

// NewBillRepo creates a new bill repository.
func NewBillRepo(txManager *postgres.TxManager) *BillRepo {
	return &BillRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the header and all items. The bill number is unique, so a
// reused number surfaces as a duplicate.
func (r *BillRepo) Create(ctx context.Context, bill *billing.Bill) error {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := insertBillQuery(r.builder, bill).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "bills_bill_number_key") {
			return apperror.NewDuplicate("bill", "bill_number", bill.BillNumber)
		}
		if bill.CustomerID != nil && postgres.IsForeignKeyViolation(err, "bills_customer_id_fkey") {
			return apperror.NewNotFound("customer", bill.CustomerID.String())
		}
		return fmt.Errorf("insert bill: %w", postgres.TranslateError(err))
	}

	if len(bill.Items) == 0 {
		return nil
	}
	sql, args, err = insertItemsQuery(r.builder, bill).ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bill items: %w", postgres.TranslateError(err))
	}
	return nil
}

func insertBillQuery(b squirrel.StatementBuilderType, bill *billing.Bill) squirrel.InsertBuilder {
	var createdAt any = bill.CreatedAt
	if bill.CreatedAt.IsZero() {
		createdAt = squirrel.Expr("NOW()")
	}
	return b.Insert(billsTable).
		Columns(billColumns...).
		Values(
			bill.ID, bill.BillNumber, bill.CustomerID, bill.UserID, bill.Subtotal, bill.Discount, bill.Tax,
			bill.TotalAmount, string(bill.PaymentMethod), string(bill.PaymentStatus), bill.AmountPaid,
			bill.Notes, createdAt,
		)
}

func insertItemsQuery(b squirrel.StatementBuilderType, bill *billing.Bill) squirrel.InsertBuilder {
	q := b.Insert(billItemsTable).Columns(itemColumns...)
	for _, it := range bill.Items {
		q = q.Values(
			it.ID, bill.ID, it.LineNo, it.ProductID, it.Quantity,
			it.UnitPrice, it.Discount, it.Tax, it.TotalPrice,
		)
	}
	return q
}

// headerSelect reads bills with the customer and cashier names.
func (r *BillRepo) headerSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(billColumns)+4)
	for _, c := range billColumns {
		cols = append(cols, "b."+c)
	}
	cols = append(cols,
		"c.name AS customer_name",
		"c.phone AS customer_phone",
		"c.email AS customer_email",
		"u.name AS user_name",
	)
	return r.builder.Select(cols...).
		From(billsTable + " b").
		LeftJoin("customers c ON c.id = b.customer_id").
		LeftJoin("users u ON u.id = b.user_id")
}

// GetByID returns a bill with its items.
func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*billing.Bill, error) {
	return r.get(ctx, r.headerSelect().Where(squirrel.Eq{"b.id": billID}), billID)
}

// GetForUpdate locks the bill row. Joined rows are not locked.
func (r *BillRepo) GetForUpdate(ctx context.Context, billID id.ID) (*billing.Bill, error) {
	if r.txManager.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock bill requires transaction context")
	}
	q := r.headerSelect().Where(squirrel.Eq{"b.id": billID}).Suffix("FOR UPDATE OF b")
	return r.get(ctx, q, billID)
}

func (r *BillRepo) get(ctx context.Context, q squirrel.SelectBuilder, billID id.ID) (*billing.Bill, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var bill billing.Bill
	if err := pgxscan.Get(ctx, querier, &bill, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bill", billID.String())
		}
		return nil, fmt.Errorf("get bill: %w", postgres.TranslateError(err))
	}

	items, err := r.items(ctx, billID)
	if err != nil {
		return nil, err
	}
	bill.Items = items
	bill.ItemCount = len(items)
	return &bill, nil
}

// items returns the lines of a bill in line order.
func (r *BillRepo) items(ctx context.Context, billID id.ID) ([]*billing.BillItem, error) {
	sql, args, err := r.builder.
		Select(
			"i.id", "i.bill_id", "i.line_no", "i.product_id", "i.quantity",
			"i.unit_price", "i.discount", "i.tax", "i.total_price",
			"p.name AS product_name", "p.barcode", "p.unit",
		).
		From(billItemsTable + " i").
		Join("products p ON p.id = i.product_id").
		Where(squirrel.Eq{"i.bill_id": billID}).
		OrderBy("i.line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]*billing.BillItem, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get bill items: %w", postgres.TranslateError(err))
	}
	return items, nil
}

// Delete removes a bill; its items go with it.
func (r *BillRepo) Delete(ctx context.Context, billID id.ID) error {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM bills WHERE id = $1`, billID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", postgres.TranslateError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bill", billID.String())
	}
	return nil
}

func (r *BillRepo) listQuery(filter billing.ListFilter) squirrel.SelectBuilder {
	q := r.headerSelect().
		Column("(SELECT COUNT(*) FROM bill_items i WHERE i.bill_id = b.id) AS item_count").
		OrderBy("b.created_at DESC", "b.id DESC")

	if filter.From != nil {
		q = q.Where("b.created_at::date >= ?::date", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		q = q.Where("b.created_at::date <= ?::date", filter.To.Format("2006-01-02"))
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"b.customer_id": *filter.CustomerID})
	}
	if filter.PaymentStatus != "" {
		q = q.Where(squirrel.Eq{"b.payment_status": string(filter.PaymentStatus)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// List returns bill headers newest first.
func (r *BillRepo) List(ctx context.Context, filter billing.ListFilter) ([]*billing.Bill, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	bills := make([]*billing.Bill, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &bills, sql, args...); err != nil {
		return nil, fmt.Errorf("list bills: %w", postgres.TranslateError(err))
	}
	return bills, nil
}

const todaySummarySQL = `
	SELECT
		COUNT(*) AS total_bills,
		COALESCE(SUM(total_amount), 0) AS total_sales,
		COALESCE(SUM(LEAST(amount_paid, total_amount)), 0) AS paid_amount,
		COALESCE(SUM(GREATEST(total_amount - amount_paid, 0)), 0) AS unpaid_amount
	FROM bills
	WHERE created_at >= date_trunc('day', NOW())
`

// TodaySummary aggregates bills created since midnight in the session time zone.
func (r *BillRepo) TodaySummary(ctx context.Context) (*billing.DaySummary, error) {
	var s billing.DaySummary
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, todaySummarySQL); err != nil {
		return nil, fmt.Errorf("today summary: %w", postgres.TranslateError(err))
	}
	return &s, nil
}
