// Package stock implements stock levels and the append-only movement log.
package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/types"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// ParseMovementType validates s.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementIn, MovementOut, MovementAdjustment:
		return t, nil
	case "":
		return "", apperror.NewValidation("movement_type is required").WithDetail("field", "movement_type")
	default:
		return "", apperror.NewValidation("movement_type must be one of in, out, adjustment").
			WithDetail("field", "movement_type").
			WithDetail("value", s)
	}
}

// Delta returns the signed stock change for quantity of this type.
// in adds, out subtracts, adjustment carries its own sign.
func (t MovementType) Delta(quantity int) int {
	if t == MovementOut {
		return -quantity
	}
	return quantity
}

// Movement is one entry of the append-only stock log.
// BillID is a weak reference: it survives deletion of the bill.
type Movement struct {
	ID           id.ID        `db:"id" json:"id"`
	ProductID    id.ID        `db:"product_id" json:"product_id"`
	MovementType MovementType `db:"movement_type" json:"movement_type"`
	Quantity     int          `db:"quantity" json:"quantity"`
	BillID       *id.ID       `db:"bill_id" json:"bill_id,omitempty"`
	Notes        *string      `db:"notes" json:"notes,omitempty"`
	CreatedBy    *id.ID       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`

	// Populated by list queries
	ProductName   string  `db:"product_name" json:"product_name,omitempty"`
	CreatedByName *string `db:"created_by_name" json:"created_by_name,omitempty"`
}

// NewMovement creates a movement with a fresh id and timestamp.
func NewMovement(productID id.ID, t MovementType, quantity int) *Movement {
	return &Movement{
		ID:           id.New(),
		ProductID:    productID,
		MovementType: t,
		Quantity:     quantity,
		CreatedAt:    time.Now().UTC(),
	}
}

// Level is the lockable stock row of a product.
type Level struct {
	ProductID     id.ID           `db:"id"`
	Name          string          `db:"name"`
	Price         decimal.Decimal `db:"price"`
	StockQuantity int             `db:"stock_quantity"`
	ReorderLevel  int             `db:"reorder_level"`
	IsActive      bool            `db:"is_active"`
}

// IsLow reports whether stock is at or below the reorder level.
func (l *Level) IsLow() bool {
	return l.StockQuantity <= l.ReorderLevel
}

// CrossesReorderLevel reports whether moving to after takes a level that is
// not yet low to or below its reorder level.
func (l *Level) CrossesReorderLevel(after int) bool {
	next := Level{StockQuantity: after, ReorderLevel: l.ReorderLevel}
	return !l.IsLow() && next.IsLow()
}

// MovementFilter for listing movements.
type MovementFilter struct {
	ProductID *id.ID
	BillID    *id.ID
	Limit     int
}

// AdjustInput is the request to change stock outside of billing.
type AdjustInput struct {
	ProductID    id.ID
	MovementType MovementType
	Quantity     int
	Notes        *string
	CreatedBy    *id.ID
}

// Validate checks the quantity rules for the movement type.
func (in AdjustInput) Validate() error {
	if id.IsNil(in.ProductID) {
		return apperror.NewValidation("product_id is required").WithDetail("field", "product_id")
	}
	if _, err := ParseMovementType(string(in.MovementType)); err != nil {
		return err
	}
	if in.Quantity > types.MaxQuantity || in.Quantity < -types.MaxQuantity {
		return apperror.NewValidation("quantity is out of range").
			WithDetail("field", "quantity").
			WithDetail("max", types.MaxQuantity)
	}
	switch in.MovementType {
	case MovementAdjustment:
		if in.Quantity == 0 {
			return apperror.NewValidation("quantity must be non-zero").WithDetail("field", "quantity")
		}
	default:
		if in.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
		}
	}
	return nil
}

// AdjustResult describes an applied adjustment.
type AdjustResult struct {
	Movement    *Movement `json:"movement"`
	NewQuantity int       `json:"new_quantity"`
}
