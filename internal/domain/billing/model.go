// Package billing implements the bill transaction: stock check, totals,
// numbering, persistence and the customer aggregate, all in one unit.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/types"
)

// PaymentMethod is how a bill was settled.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentUPI   PaymentMethod = "upi"
	PaymentOther PaymentMethod = "other"
)

// PaymentStatus is the settlement state of a bill.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

// ParsePaymentMethod validates s; empty means cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case "":
		return PaymentCash, nil
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOther:
		return m, nil
	default:
		return "", apperror.NewValidation("payment_method must be one of cash, card, upi, other").
			WithDetail("field", "payment_method")
	}
}

// ParsePaymentStatus validates s; empty is returned as-is so the status can
// be derived from the amount paid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case "", StatusPaid, StatusPartial, StatusUnpaid:
		return st, nil
	default:
		return "", apperror.NewValidation("payment_status must be one of paid, partial, unpaid").
			WithDetail("field", "payment_status")
	}
}

// DerivePaymentStatus infers the status from what was paid against total.
func DerivePaymentStatus(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsZero():
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// Bill is an immutable sale record. It can only be deleted.
type Bill struct {
	ID            id.ID           `db:"id" json:"id"`
	BillNumber    string          `db:"bill_number" json:"bill_number"`
	CustomerID    *id.ID          `db:"customer_id" json:"customer_id,omitempty"`
	UserID        id.ID           `db:"user_id" json:"user_id"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	AmountPaid    decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`

	// Populated by read queries
	CustomerName  *string `db:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone *string `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerEmail *string `db:"customer_email" json:"customer_email,omitempty"`
	UserName      *string `db:"user_name" json:"user_name,omitempty"`
	ItemCount     int     `db:"item_count" json:"item_count,omitempty"`

	Items []*BillItem `db:"-" json:"items,omitempty"`
}

// Balance returns what is still owed.
func (b *Bill) Balance() decimal.Decimal {
	if b.AmountPaid.GreaterThanOrEqual(b.TotalAmount) {
		return decimal.Zero
	}
	return b.TotalAmount.Sub(b.AmountPaid)
}

// BillItem is one line of a bill. UnitPrice is a snapshot, decoupled from
// the live product price.
type BillItem struct {
	ID         id.ID           `db:"id" json:"id"`
	BillID     id.ID           `db:"bill_id" json:"bill_id"`
	LineNo     int             `db:"line_no" json:"line_no"`
	ProductID  id.ID           `db:"product_id" json:"product_id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount   decimal.Decimal `db:"discount" json:"discount"`
	Tax        decimal.Decimal `db:"tax" json:"tax"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`

	// Populated by read queries
	ProductName string  `db:"product_name" json:"product_name"`
	Barcode     *string `db:"barcode" json:"barcode,omitempty"`
	Unit        string  `db:"unit" json:"unit,omitempty"`
}

// ItemInput is one requested cart line.
type ItemInput struct {
	ProductID id.ID
	Quantity  int
	// UnitPrice nil means the current product price.
	UnitPrice *decimal.Decimal
	Discount  *decimal.Decimal
	// Tax nil means TAX_RATE applied to the discounted line amount.
	Tax *decimal.Decimal
}

// CreateInput is the request to create a bill.
type CreateInput struct {
	CustomerID *id.ID
	// UserID nil means the authenticated user.
	UserID *id.ID
	Items  []ItemInput
	// Discount nil means the sum of item discounts.
	Discount *decimal.Decimal
	// Tax nil means the sum of item taxes.
	Tax           *decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	// AmountPaid nil means the bill total.
	AmountPaid *decimal.Decimal
	Notes      *string
}

// Validate checks the request shape before any store access.
func (in CreateInput) Validate() error {
	if len(in.Items) == 0 {
		return apperror.NewValidation("items must not be empty").WithDetail("field", "items")
	}
	for i, item := range in.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product_id is required").WithDetail("field", "items").WithDetail("line", i+1)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").WithDetail("field", "items").WithDetail("line", i+1)
		}
		if err := nonNegative(item.UnitPrice, "unit_price", i+1); err != nil {
			return err
		}
		if err := nonNegative(item.Discount, "discount", i+1); err != nil {
			return err
		}
		if err := nonNegative(item.Tax, "tax", i+1); err != nil {
			return err
		}
	}
	for productID, qty := range QuantitiesByProduct(in.Items) {
		if qty > types.MaxQuantity {
			return apperror.NewValidation("quantity is out of range").
				WithDetail("field", "items").
				WithDetail("product_id", productID.String()).
				WithDetail("max", types.MaxQuantity)
		}
	}
	for field, v := range map[string]*decimal.Decimal{"discount": in.Discount, "tax": in.Tax, "amount_paid": in.AmountPaid} {
		if err := nonNegative(v, field, 0); err != nil {
			return err
		}
	}
	if _, err := ParsePaymentMethod(in.PaymentMethod); err != nil {
		return err
	}
	if _, err := ParsePaymentStatus(in.PaymentStatus); err != nil {
		return err
	}
	return nil
}

func nonNegative(v *decimal.Decimal, field string, line int) error {
	if v == nil || !v.IsNegative() {
		return nil
	}
	err := apperror.NewValidation(field+" must not be negative").WithDetail("field", field)
	if line > 0 {
		err = err.WithDetail("line", line)
	}
	return err
}

// CreateResult identifies a new bill.
type CreateResult struct {
	BillID     id.ID  `json:"bill_id"`
	BillNumber string `json:"bill_number"`
}

// ListFilter for listing bills.
type ListFilter struct {
	From          *time.Time
	To            *time.Time
	CustomerID    *id.ID
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}

// DaySummary aggregates bills created today.
type DaySummary struct {
	TotalBills   int64           `db:"total_bills" json:"total_bills"`
	TotalSales   decimal.Decimal `db:"total_sales" json:"total_sales"`
	PaidAmount   decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	UnpaidAmount decimal.Decimal `db:"unpaid_amount" json:"unpaid_amount"`
}
