package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/core/id"
	"shoppos/internal/core/numerator"
	"shoppos/internal/core/tx"
	"shoppos/internal/domain"
	"shoppos/internal/domain/audit"
	"shoppos/internal/domain/customer"
	"shoppos/internal/domain/events"
	"shoppos/internal/domain/stock"
	"shoppos/pkg/logger"
)

// DefaultListLimit is the page size of ListBills when none is given.
const DefaultListLimit = 100

// ServiceConfig wires the billing service.
type ServiceConfig struct {
	Bills     Repository
	Stock     stock.Repository
	Customers CustomerLedger
	TxManager tx.Manager
	Numerator numerator.Generator
	Numbering numerator.Config
	// TaxRate is the percent applied to lines without an explicit tax.
	TaxRate decimal.Decimal
	Policy  *DiscountPolicy
	Events  events.Publisher
	Audit   audit.Recorder
	// Now stamps created_at; defaults to time.Now.
	Now func() time.Time
}

// Service runs the bill transaction.
type Service struct {
	bills     Repository
	stock     stock.Repository
	customers CustomerLedger
	txManager tx.Manager
	numerator numerator.Generator
	numbering numerator.Config
	taxRate   decimal.Decimal
	policy    *DiscountPolicy
	events    events.Publisher
	audit     audit.Recorder
	now       func() time.Time
	hooks     *domain.HookRegistry[*Bill]
}

// NewService creates a billing service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Policy == nil {
		cfg.Policy = MustDiscountPolicy(DefaultDiscountPolicy)
	}
	if cfg.Events == nil {
		cfg.Events = events.NopPublisher{}
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Numbering.Prefix == "" {
		cfg.Numbering = numerator.DefaultConfig("INV")
	}
	return &Service{
		bills:     cfg.Bills,
		stock:     cfg.Stock,
		customers: cfg.Customers,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		numbering: cfg.Numbering,
		taxRate:   cfg.TaxRate,
		policy:    cfg.Policy,
		events:    cfg.Events,
		audit:     cfg.Audit,
		now:       cfg.Now,
		hooks:     domain.NewHookRegistry[*Bill](),
	}
}

// Hooks returns the lifecycle hooks. AfterCreate and AfterDelete run once
// the transaction has committed; their errors are logged, not returned.
func (s *Service) Hooks() *domain.HookRegistry[*Bill] {
	return s.hooks
}

// CreateBill records a sale. Inside one transaction it re-reads stock under
// row locks, computes totals, bumps the customer aggregate, allocates the
// bill number, inserts the bill and decrements stock with one "out" movement
// per line. Any failure leaves no trace, including no spent bill number.
func (s *Service) CreateBill(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	userID, ok := audit.ResolveActorID(ctx, in.UserID)
	if !ok {
		return nil, apperror.NewValidation("user_id is required").WithDetail("field", "user_id")
	}
	method, _ := ParsePaymentMethod(in.PaymentMethod)
	status, _ := ParsePaymentStatus(in.PaymentStatus)

	var bill *Bill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		requested := QuantitiesByProduct(in.Items)
		levels, err := s.stock.LockLevels(ctx, stock.SortedIDs(requested))
		if err != nil {
			return fmt.Errorf("lock stock: %w", err)
		}
		if err := checkAvailability(in.Items, requested, levels); err != nil {
			return err
		}

		lines := make([]PricedLine, 0, len(in.Items))
		for _, item := range in.Items {
			price := levels[item.ProductID].Price
			if item.UnitPrice != nil {
				price = *item.UnitPrice
			}
			lines = append(lines, PricedLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: price,
				Discount:  item.Discount,
				Tax:       item.Tax,
			})
		}
		totals := ComputeTotals(lines, in.Discount, in.Tax, s.taxRate)

		if err := s.policy.Check(PolicyInput{Totals: totals, ItemCount: len(lines), Role: appctx.GetRole(ctx)}); err != nil {
			return err
		}

		amountPaid := totals.Total
		if in.AmountPaid != nil {
			amountPaid = *in.AmountPaid
		}
		if status == "" {
			status = DerivePaymentStatus(totals.Total, amountPaid)
		}

		// The increment locks the customer row, so the bill's foreign key
		// cannot be lost before the insert below.
		if in.CustomerID != nil {
			points := customer.LoyaltyPointsFor(totals.Total)
			if err := s.customers.RecordPurchase(ctx, *in.CustomerID, totals.Total, points); err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewNotFound("customer", in.CustomerID.String())
				}
				return fmt.Errorf("record purchase: %w", err)
			}
		}

		number, err := s.numerator.GetNextNumber(ctx, s.numbering)
		if err != nil {
			return fmt.Errorf("allocate bill number: %w", err)
		}

		bill = &Bill{
			ID:            id.New(),
			BillNumber:    number,
			CustomerID:    in.CustomerID,
			UserID:        userID,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			Tax:           totals.Tax,
			TotalAmount:   totals.Total,
			PaymentMethod: method,
			PaymentStatus: status,
			AmountPaid:    amountPaid,
			Notes:         in.Notes,
			Items:         totals.Items,
			CreatedAt:     s.now().UTC(),
		}
		for _, item := range bill.Items {
			item.BillID = bill.ID
			item.ProductName = levels[item.ProductID].Name
		}
		if err := s.bills.Create(ctx, bill); err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}

		deltas := make(map[id.ID]int, len(requested))
		for productID, qty := range requested {
			deltas[productID] = -qty
		}
		quantities, err := s.stock.ApplyDeltas(ctx, deltas)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		movements := make([]*stock.Movement, 0, len(bill.Items))
		for _, item := range bill.Items {
			m := stock.NewMovement(item.ProductID, stock.MovementOut, item.Quantity)
			m.BillID = &bill.ID
			m.CreatedBy = &userID
			notes := "Sale " + bill.BillNumber
			m.Notes = &notes
			movements = append(movements, m)
		}
		if err := s.stock.AppendMovements(ctx, movements); err != nil {
			return fmt.Errorf("append movements: %w", err)
		}

		return s.events.Publish(ctx, s.createdEvents(bill, levels, quantities)...)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bill created",
		"bill_id", bill.ID,
		"bill_number", bill.BillNumber,
		"total_amount", bill.TotalAmount.String(),
		"items", len(bill.Items))

	if err := s.hooks.Run(ctx, domain.AfterCreate, bill); err != nil {
		logger.Warn(ctx, "after-create hook failed", "bill_id", bill.ID, "error", err)
	}

	return &CreateResult{BillID: bill.ID, BillNumber: bill.BillNumber}, nil
}

// checkAvailability validates every requested product against the locked
// levels. Quantities are compared per product, summed across lines.
func checkAvailability(items []ItemInput, requested map[id.ID]int, levels map[id.ID]*stock.Level) error {
	seen := make(map[id.ID]bool, len(requested))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		level, ok := levels[item.ProductID]
		if !ok {
			return apperror.NewNotFound("product", item.ProductID.String())
		}
		if !level.IsActive {
			return apperror.NewBusinessRule("product is inactive").
				WithDetail("product_id", level.ProductID.String()).
				WithDetail("product_name", level.Name)
		}
		if qty := requested[item.ProductID]; qty > level.StockQuantity {
			return apperror.NewInsufficientStock(level.ProductID.String(), level.Name, qty, level.StockQuantity)
		}
	}
	return nil
}

func (s *Service) createdEvents(bill *Bill, levels map[id.ID]*stock.Level, quantities map[id.ID]int) []events.Event {
	evts := []events.Event{{
		AggregateType: events.AggregateBill,
		AggregateID:   bill.ID,
		EventType:     events.BillCreated,
		Payload: events.BillCreatedPayload{
			BillID:      bill.ID,
			BillNumber:  bill.BillNumber,
			CustomerID:  bill.CustomerID,
			UserID:      bill.UserID,
			TotalAmount: bill.TotalAmount,
			ItemCount:   len(bill.Items),
		},
	}}
	for _, productID := range stock.SortedIDs(quantities) {
		level := levels[productID]
		after := quantities[productID]
		if level.CrossesReorderLevel(after) {
			evts = append(evts, events.LowStock(productID, level.Name, after, level.ReorderLevel))
		}
	}
	return evts
}

// GetBill returns a bill with its items.
func (s *Service) GetBill(ctx context.Context, billID id.ID) (*Bill, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("bill", billID.String())
		}
		return nil, err
	}
	return bill, nil
}

// DeleteBill removes a bill and puts its quantities back into stock in one
// transaction. The customer purchase aggregate and the movement log keep the
// original sale; the audit snapshot and the bill.deleted event say so.
func (s *Service) DeleteBill(ctx context.Context, billID id.ID) error {
	bill, err := tx.Run(ctx, s.txManager, func(ctx context.Context) (*Bill, error) {
		bill, err := s.bills.GetForUpdate(ctx, billID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("bill", billID.String())
			}
			return nil, fmt.Errorf("lock bill: %w", err)
		}

		restore := make(map[id.ID]int, len(bill.Items))
		for _, item := range bill.Items {
			restore[item.ProductID] += item.Quantity
		}
		if len(restore) > 0 {
			if _, err := s.stock.LockLevels(ctx, stock.SortedIDs(restore)); err != nil {
				return nil, fmt.Errorf("lock stock: %w", err)
			}
			if _, err := s.stock.ApplyDeltas(ctx, restore); err != nil {
				return nil, fmt.Errorf("restore stock: %w", err)
			}
		}

		if err := s.bills.Delete(ctx, billID); err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("bill", billID.String())
			}
			return nil, fmt.Errorf("delete bill: %w", err)
		}

		if err := s.audit.LogChange(ctx, audit.EntityBill, bill.ID, audit.ActionDelete, map[string]any{
			"bill":                        bill,
			"stock_restored":              true,
			"customer_aggregate_reversed": false,
			"movements_reversed":          false,
		}); err != nil {
			return nil, fmt.Errorf("audit bill delete: %w", err)
		}

		return bill, s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateBill,
			AggregateID:   bill.ID,
			EventType:     events.BillDeleted,
			Payload: events.BillDeletedPayload{
				BillID:                    bill.ID,
				BillNumber:                bill.BillNumber,
				CustomerID:                bill.CustomerID,
				TotalAmount:               bill.TotalAmount,
				StockRestored:             true,
				CustomerAggregateReversed: false,
				MovementsReversed:         false,
			},
		})
	})
	if err != nil {
		return err
	}

	logger.Warn(ctx, "bill deleted; customer purchase total and movement log not reversed",
		"bill_id", bill.ID,
		"bill_number", bill.BillNumber,
		"total_amount", bill.TotalAmount.String(),
		"customer_id", bill.CustomerID)

	if err := s.hooks.Run(ctx, domain.AfterDelete, bill); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "bill_id", bill.ID, "error", err)
	}
	return nil
}

// ListBills returns bills newest first.
func (s *Service) ListBills(ctx context.Context, filter ListFilter) ([]*Bill, error) {
	filter.Limit = domain.ClampLimit(filter.Limit, DefaultListLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, apperror.NewValidation("'to' must not be before 'from'")
	}
	return s.bills.List(ctx, filter)
}

// TodaySummary returns today's bill totals.
func (s *Service) TodaySummary(ctx context.Context) (*DaySummary, error) {
	return s.bills.TodaySummary(ctx)
}
