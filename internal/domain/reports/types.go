// Package reports provides read-only sales and inventory aggregations.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
)

// GroupBy selects the period of a sales report row.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

// ParseGroupBy validates s; empty means day.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(s); g {
	case "":
		return GroupByDay, nil
	case GroupByDay, GroupByMonth, GroupByYear:
		return g, nil
	default:
		return "", apperror.NewValidation("group_by must be one of day, month, year").WithDetail("field", "group_by")
	}
}

// Pattern is the to_char pattern that labels a period.
func (g GroupBy) Pattern() string {
	switch g {
	case GroupByYear:
		return "YYYY"
	case GroupByMonth:
		return "YYYY-MM"
	default:
		return "YYYY-MM-DD"
	}
}

// SalesFilter selects the bills of a sales report. Both bounds are optional
// and inclusive of whole days.
type SalesFilter struct {
	GroupBy GroupBy
	Start   *time.Time
	End     *time.Time
}

// SalesRow is one period of a sales report.
type SalesRow struct {
	Period        string          `db:"period" json:"period"`
	TotalBills    int64           `db:"total_bills" json:"total_bills"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	TotalDiscount decimal.Decimal `db:"total_discount" json:"total_discount"`
	TotalTax      decimal.Decimal `db:"total_tax" json:"total_tax"`
	TotalSales    decimal.Decimal `db:"total_sales" json:"total_sales"`
}

// SalesReport is the result of SalesReport.
type SalesReport struct {
	GroupBy GroupBy     `json:"group_by"`
	Start   *time.Time  `json:"start,omitempty"`
	End     *time.Time  `json:"end,omitempty"`
	Rows    []*SalesRow `json:"rows"`
	Totals  SalesRow    `json:"totals"`
}

// Summarize fills Totals from Rows.
func (r *SalesReport) Summarize() {
	t := SalesRow{Period: "total"}
	for _, row := range r.Rows {
		t.TotalBills += row.TotalBills
		t.Subtotal = t.Subtotal.Add(row.Subtotal)
		t.TotalDiscount = t.TotalDiscount.Add(row.TotalDiscount)
		t.TotalTax = t.TotalTax.Add(row.TotalTax)
		t.TotalSales = t.TotalSales.Add(row.TotalSales)
	}
	r.Totals = t
}

// PeriodSales is a bill count and amount for a period.
type PeriodSales struct {
	TotalBills int64           `db:"total_bills" json:"total_bills"`
	TotalSales decimal.Decimal `db:"total_sales" json:"total_sales"`
}

// RecentBill is a dashboard row.
type RecentBill struct {
	ID           id.ID           `db:"id" json:"id"`
	BillNumber   string          `db:"bill_number" json:"bill_number"`
	CustomerName *string         `db:"customer_name" json:"customer_name,omitempty"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TodaySales     PeriodSales   `json:"today_sales"`
	MonthlySales   PeriodSales   `json:"monthly_sales"`
	TotalProducts  int64         `json:"total_products"`
	LowStockCount  int64         `json:"low_stock_count"`
	TotalCustomers int64         `json:"total_customers"`
	RecentBills    []*RecentBill `json:"recent_bills"`
}

// LowStockItem is an active product at or below its reorder level.
type LowStockItem struct {
	ID            id.ID   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Barcode       *string `db:"barcode" json:"barcode,omitempty"`
	CategoryName  *string `db:"category_name" json:"category_name,omitempty"`
	StockQuantity int     `db:"stock_quantity" json:"stock_quantity"`
	ReorderLevel  int     `db:"reorder_level" json:"reorder_level"`
	Unit          string  `db:"unit" json:"unit"`
}
