package dto

import (
	"github.com/shopspring/decimal"

	"shoppos/internal/domain/catalog"
)

// ProductRequest creates or updates a product. stock_quantity is read on
// create only.
type ProductRequest struct {
	Name          string          `json:"name" binding:"required,max=200"`
	CategoryID    *string         `json:"category_id" binding:"omitempty,uuid"`
	Barcode       *string         `json:"barcode" binding:"omitempty,barcode"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0,max=1000000"`
	ReorderLevel  *int            `json:"reorder_level" binding:"omitempty,min=0"`
	Unit          string          `json:"unit" binding:"max=20"`
	Description   *string         `json:"description"`
}

// ToInput converts to the domain input.
func (r *ProductRequest) ToInput() (catalog.ProductInput, error) {
	categoryID, err := ParseOptionalID("category_id", r.CategoryID)
	if err != nil {
		return catalog.ProductInput{}, err
	}
	return catalog.ProductInput{
		Name:          r.Name,
		CategoryID:    categoryID,
		Barcode:       r.Barcode,
		Price:         r.Price,
		CostPrice:     r.CostPrice,
		StockQuantity: r.StockQuantity,
		ReorderLevel:  r.ReorderLevel,
		Unit:          r.Unit,
		Description:   r.Description,
	}, nil
}

// ProductListQuery filters products.
type ProductListQuery struct {
	PageQuery
	CategoryID      string `form:"category_id" binding:"omitempty,uuid"`
	Search          string `form:"search"`
	LowStock        bool   `form:"low_stock"`
	IncludeInactive bool   `form:"include_inactive"`
}

// ToFilter converts to the domain filter.
func (q *ProductListQuery) ToFilter() (catalog.ProductFilter, error) {
	categoryID, err := ParseOptionalID("category_id", &q.CategoryID)
	if err != nil {
		return catalog.ProductFilter{}, err
	}
	return catalog.ProductFilter{
		CategoryID:      categoryID,
		Search:          q.Search,
		LowStock:        q.LowStock,
		IncludeInactive: q.IncludeInactive,
		Limit:           q.Limit,
		Offset:          q.Offset,
	}, nil
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}
