package dto

import (
	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
)

// BillItemRequest is one cart line. unit_price absent means the current
// product price.
type BillItemRequest struct {
	ProductID string           `json:"product_id" binding:"required,uuid"`
	Quantity  int              `json:"quantity" binding:"required,min=1,max=1000000"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  *decimal.Decimal `json:"discount"`
	Tax       *decimal.Decimal `json:"tax"`
}

// CreateBillRequest is the body of POST /bills.
type CreateBillRequest struct {
	CustomerID    *string           `json:"customer_id" binding:"omitempty,uuid"`
	UserID        *string           `json:"user_id" binding:"omitempty,uuid"`
	Items         []BillItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount      *decimal.Decimal  `json:"discount"`
	Tax           *decimal.Decimal  `json:"tax"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,payment_method"`
	PaymentStatus string            `json:"payment_status" binding:"omitempty,oneof=paid partial unpaid"`
	AmountPaid    *decimal.Decimal  `json:"amount_paid"`
	Notes         *string           `json:"notes"`
}

// ToInput converts to the domain input.
func (r *CreateBillRequest) ToInput() (billing.CreateInput, error) {
	customerID, err := ParseOptionalID("customer_id", r.CustomerID)
	if err != nil {
		return billing.CreateInput{}, err
	}
	userID, err := ParseOptionalID("user_id", r.UserID)
	if err != nil {
		return billing.CreateInput{}, err
	}

	items := make([]billing.ItemInput, len(r.Items))
	for i, it := range r.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			return billing.CreateInput{}, apperror.NewValidation("invalid product_id").
				WithDetail("field", "items").
				WithDetail("line", i+1)
		}
		items[i] = billing.ItemInput{
			ProductID: productID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Tax:       it.Tax,
		}
	}

	return billing.CreateInput{
		CustomerID:    customerID,
		UserID:        userID,
		Items:         items,
		Discount:      r.Discount,
		Tax:           r.Tax,
		PaymentMethod: r.PaymentMethod,
		PaymentStatus: r.PaymentStatus,
		AmountPaid:    r.AmountPaid,
		Notes:         r.Notes,
	}, nil
}

// BillListQuery filters the bill list. Dates are YYYY-MM-DD.
type BillListQuery struct {
	PageQuery
	From          string `form:"from"`
	To            string `form:"to"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=paid partial unpaid"`
}

// ToFilter converts to the domain filter.
func (q *BillListQuery) ToFilter() (billing.ListFilter, error) {
	from, err := ParseDate("from", q.From)
	if err != nil {
		return billing.ListFilter{}, err
	}
	to, err := ParseDate("to", q.To)
	if err != nil {
		return billing.ListFilter{}, err
	}
	customerID, err := id.ParseOptional("customer_id", q.CustomerID)
	if err != nil {
		return billing.ListFilter{}, err
	}
	return billing.ListFilter{
		From:          from,
		To:            to,
		CustomerID:    customerID,
		PaymentStatus: billing.PaymentStatus(q.PaymentStatus),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}, nil
}
