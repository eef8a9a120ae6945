// Package notify delivers outbox events to their consumers: the redis
// event channel, the report cache and customer receipt emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
	"shoppos/internal/domain/events"
	"shoppos/internal/infrastructure/mail"
	"shoppos/internal/infrastructure/receipt"
	"shoppos/internal/infrastructure/storage/postgres"
	"shoppos/pkg/logger"
)

// Broadcaster fans an event out to external subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg Envelope) error
}

// Invalidator drops cached report data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// BillLoader reads a bill with its items and customer contact.
type BillLoader interface {
	GetByID(ctx context.Context, billID id.ID) (*billing.Bill, error)
}

// ReceiptRenderer renders a bill receipt into memory.
type ReceiptRenderer interface {
	Bytes(bill *billing.Bill) ([]byte, error)
}

// Sender delivers one email.
type Sender interface {
	Send(to, subject, body string, att *mail.Attachment) error
}

// Envelope is the message published on the events channel.
type Envelope struct {
	ID            id.ID           `json:"id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   id.ID           `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
}

// Config wires the dispatcher. Nil members disable their concern.
type Config struct {
	Broadcaster Broadcaster
	Reports     Invalidator
	Bills       BillLoader
	Receipts    ReceiptRenderer
	Mailer      Sender
	ShopName    string
}

// Dispatcher handles outbox messages. A returned error leaves the message
// pending for a retry.
type Dispatcher struct {
	cfg Config
	log *logger.Logger
}

var _ postgres.OutboxHandler = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{cfg: cfg, log: log.WithComponent("notify")}
}

// Handle delivers one outbox message.
func (d *Dispatcher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if d.cfg.Broadcaster != nil {
		env := Envelope{
			ID:            msg.ID,
			EventType:     msg.EventType,
			AggregateType: msg.AggregateType,
			AggregateID:   msg.AggregateID,
			Payload:       msg.Payload,
		}
		if err := d.cfg.Broadcaster.Broadcast(ctx, env); err != nil {
			return fmt.Errorf("broadcast %s: %w", msg.EventType, err)
		}
	}

	switch msg.EventType {
	case events.BillCreated:
		d.invalidateReports(ctx)
		return d.emailReceipt(ctx, msg)
	case events.BillDeleted, events.StockAdjusted:
		d.invalidateReports(ctx)
	case events.ProductLowStock:
		var p events.LowStockPayload
		if err := json.Unmarshal(msg.Payload, &p); err == nil {
			d.log.Warnw("product at or below reorder level",
				"product_id", p.ProductID,
				"product", p.ProductName,
				"stock", p.StockQuantity,
				"reorder_level", p.ReorderLevel)
		}
	}
	return nil
}

// Cache misses are harmless, so invalidation failures never block delivery.
func (d *Dispatcher) invalidateReports(ctx context.Context) {
	if d.cfg.Reports == nil {
		return
	}
	if err := d.cfg.Reports.Invalidate(ctx); err != nil {
		d.log.Warnw("invalidate report cache", "error", err)
	}
}

func (d *Dispatcher) emailReceipt(ctx context.Context, msg *postgres.OutboxMessage) error {
	if d.cfg.Mailer == nil || d.cfg.Bills == nil || d.cfg.Receipts == nil {
		return nil
	}

	var payload events.BillCreatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Undecodable payloads would fail every retry.
		d.log.Errorw("decode bill.created payload", "message_id", msg.ID, "error", err)
		return nil
	}
	if payload.CustomerID == nil {
		return nil
	}

	bill, err := d.cfg.Bills.GetByID(ctx, payload.BillID)
	if err != nil {
		return fmt.Errorf("load bill %s: %w", payload.BillID, err)
	}
	if bill.CustomerEmail == nil || *bill.CustomerEmail == "" {
		return nil
	}

	pdf, err := d.cfg.Receipts.Bytes(bill)
	if err != nil {
		return fmt.Errorf("render receipt %s: %w", bill.BillNumber, err)
	}

	subject := fmt.Sprintf("Your receipt %s", bill.BillNumber)
	body := fmt.Sprintf("Thank you for shopping at %s.\nTotal: %s\n", d.cfg.ShopName, bill.TotalAmount.StringFixed(2))
	att := &mail.Attachment{Name: receipt.FileName(bill), ContentType: "application/pdf", Data: pdf}

	if err := d.cfg.Mailer.Send(*bill.CustomerEmail, subject, body, att); err != nil {
		return err
	}
	d.log.Infow("receipt emailed", "bill_number", bill.BillNumber)
	return nil
}

// RedisBroadcaster publishes envelopes as JSON on a redis channel.
type RedisBroadcaster struct {
	client  redis.Cmdable
	channel string
}

// NewRedisBroadcaster creates a broadcaster for channel.
func NewRedisBroadcaster(client redis.Cmdable, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channel: channel}
}

// Broadcast publishes msg.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, msg Envelope) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}
