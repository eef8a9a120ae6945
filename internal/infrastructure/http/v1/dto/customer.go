package dto

import (
	"shoppos/internal/domain/customer"
)

// CustomerRequest creates or updates a customer. Purchase totals and loyalty
// points are not accepted.
type CustomerRequest struct {
	Name    string  `json:"name" binding:"required,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Email   *string `json:"email" binding:"omitempty,email,max=255"`
	Address *string `json:"address"`
}

// ToInput converts to the domain input.
func (r *CustomerRequest) ToInput() customer.Input {
	return customer.Input{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
	}
}

// CustomerListQuery searches customers.
type CustomerListQuery struct {
	PageQuery
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
}
