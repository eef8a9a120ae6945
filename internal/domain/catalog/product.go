// Package catalog provides products and categories.
package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/entity"
	"shoppos/internal/core/id"
	"shoppos/internal/core/types"
)

const (
	DefaultReorderLevel = 10
	DefaultUnit         = "piece"
)

// Product is a sellable item. Products are deactivated, never deleted.
type Product struct {
	entity.Base
	entity.Activatable

	Name          string          `db:"name" json:"name"`
	CategoryID    *id.ID          `db:"category_id" json:"category_id,omitempty"`
	Barcode       *string         `db:"barcode" json:"barcode,omitempty"`
	Price         decimal.Decimal `db:"price" json:"price"`
	CostPrice     decimal.Decimal `db:"cost_price" json:"cost_price"`
	StockQuantity int             `db:"stock_quantity" json:"stock_quantity"`
	ReorderLevel  int             `db:"reorder_level" json:"reorder_level"`
	Unit          string          `db:"unit" json:"unit"`
	Description   *string         `db:"description" json:"description,omitempty"`

	// Populated by read queries
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
}

// NewProduct creates an active product with default reorder level and unit.
func NewProduct(name string, price decimal.Decimal) *Product {
	return &Product{
		Base:         entity.NewBase(),
		Activatable:  entity.Activatable{IsActive: true},
		Name:         name,
		Price:        price,
		CostPrice:    decimal.Zero,
		ReorderLevel: DefaultReorderLevel,
		Unit:         DefaultUnit,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(p.Name) > 200 {
		return apperror.NewValidation("name must be at most 200 characters").WithDetail("field", "name")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "price")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost_price must not be negative").WithDetail("field", "cost_price")
	}
	if p.StockQuantity < 0 {
		return apperror.NewValidation("stock_quantity must not be negative").WithDetail("field", "stock_quantity")
	}
	if p.StockQuantity > types.MaxQuantity {
		return apperror.NewValidation("stock_quantity is out of range").WithDetail("field", "stock_quantity")
	}
	if p.ReorderLevel < 0 {
		return apperror.NewValidation("reorder_level must not be negative").WithDetail("field", "reorder_level")
	}
	if p.Barcode != nil {
		code := strings.TrimSpace(*p.Barcode)
		if code == "" {
			p.Barcode = nil
		} else if n := len(code); n < 4 || n > 50 {
			return apperror.NewValidation("barcode must be 4 to 50 characters").WithDetail("field", "barcode")
		} else {
			p.Barcode = &code
		}
	}
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = DefaultUnit
	}
	return nil
}

// IsLowStock reports whether stock is at or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.ReorderLevel
}

// ProductFilter for listing products.
type ProductFilter struct {
	CategoryID      *id.ID
	Search          string // name or barcode
	LowStock        bool
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ProductInput carries the editable fields of a product.
// StockQuantity is honoured on create only.
type ProductInput struct {
	Name          string
	CategoryID    *id.ID
	Barcode       *string
	Price         decimal.Decimal
	CostPrice     decimal.Decimal
	StockQuantity int
	ReorderLevel  *int
	Unit          string
	Description   *string
}

func (in ProductInput) apply(p *Product) {
	p.Name = in.Name
	p.CategoryID = in.CategoryID
	p.Barcode = in.Barcode
	p.Price = in.Price
	p.CostPrice = in.CostPrice
	if in.ReorderLevel != nil {
		p.ReorderLevel = *in.ReorderLevel
	}
	if in.Unit != "" {
		p.Unit = in.Unit
	}
	p.Description = in.Description
}
