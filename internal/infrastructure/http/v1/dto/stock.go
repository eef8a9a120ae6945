package dto

import (
	"shoppos/internal/core/id"
	"shoppos/internal/domain/stock"
)

// MovementRequest is the body of POST /stock/movements. quantity is signed
// for adjustment and positive for in and out.
type MovementRequest struct {
	ProductID    string  `json:"product_id" binding:"required,uuid"`
	MovementType string  `json:"movement_type" binding:"required,movement_type"`
	Quantity     int     `json:"quantity" binding:"required,min=-1000000,max=1000000"`
	Notes        *string `json:"notes" binding:"omitempty,max=500"`
}

// ToInput converts to the domain input.
func (r *MovementRequest) ToInput() (stock.AdjustInput, error) {
	productID, err := id.ParseField("product_id", r.ProductID)
	if err != nil {
		return stock.AdjustInput{}, err
	}
	return stock.AdjustInput{
		ProductID:    productID,
		MovementType: stock.MovementType(r.MovementType),
		Quantity:     r.Quantity,
		Notes:        r.Notes,
	}, nil
}

// MovementListQuery filters the movement log.
type MovementListQuery struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	BillID    string `form:"bill_id" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ToFilter converts to the domain filter.
func (q *MovementListQuery) ToFilter() (stock.MovementFilter, error) {
	productID, err := id.ParseOptional("product_id", q.ProductID)
	if err != nil {
		return stock.MovementFilter{}, err
	}
	billID, err := id.ParseOptional("bill_id", q.BillID)
	if err != nil {
		return stock.MovementFilter{}, err
	}
	return stock.MovementFilter{ProductID: productID, BillID: billID, Limit: q.Limit}, nil
}
