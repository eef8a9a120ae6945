// Package events defines domain events written to the transactional outbox.
package events

import (
	"context"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/id"
)

// Aggregate types.
const (
	AggregateBill    = "bill"
	AggregateProduct = "product"
)

// Event types.
const (
	BillCreated     = "bill.created"
	BillDeleted     = "bill.deleted"
	StockAdjusted   = "stock.adjusted"
	ProductLowStock = "product.low_stock"
)

// Event is a fact recorded in the same transaction as the change it describes.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher records events. Implementations must join the transaction
// carried by ctx so an event is never visible without its change.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }

// BillCreatedPayload is the payload of BillCreated.
type BillCreatedPayload struct {
	BillID      id.ID           `json:"bill_id"`
	BillNumber  string          `json:"bill_number"`
	CustomerID  *id.ID          `json:"customer_id,omitempty"`
	UserID      id.ID           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// BillDeletedPayload is the payload of BillDeleted. The flags state which
// side effects of the original sale were left in place.
type BillDeletedPayload struct {
	BillID                    id.ID           `json:"bill_id"`
	BillNumber                string          `json:"bill_number"`
	CustomerID                *id.ID          `json:"customer_id,omitempty"`
	TotalAmount               decimal.Decimal `json:"total_amount"`
	StockRestored             bool            `json:"stock_restored"`
	CustomerAggregateReversed bool            `json:"customer_aggregate_reversed"`
	MovementsReversed         bool            `json:"movements_reversed"`
}

// StockAdjustedPayload is the payload of StockAdjusted.
type StockAdjustedPayload struct {
	ProductID    id.ID  `json:"product_id"`
	MovementID   id.ID  `json:"movement_id"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	NewQuantity  int    `json:"new_quantity"`
}

// LowStockPayload is the payload of ProductLowStock.
type LowStockPayload struct {
	ProductID     id.ID  `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
}

// LowStock builds a ProductLowStock event.
func LowStock(productID id.ID, name string, stock, reorderLevel int) Event {
	return Event{
		AggregateType: AggregateProduct,
		AggregateID:   productID,
		EventType:     ProductLowStock,
		Payload: LowStockPayload{
			ProductID:     productID,
			ProductName:   name,
			StockQuantity: stock,
			ReorderLevel:  reorderLevel,
		},
	}
}
