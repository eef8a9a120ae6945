package stock

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/core/tx"
	"shoppos/internal/domain"
	"shoppos/internal/domain/audit"
	"shoppos/internal/domain/events"
	"shoppos/pkg/logger"
)

// Service applies manual stock changes.
type Service struct {
	repo      Repository
	txManager tx.Manager
	events    events.Publisher
}

// NewService creates a new stock service.
func NewService(repo Repository, txManager tx.Manager, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{repo: repo, txManager: txManager, events: publisher}
}

// AdjustStock applies one movement atomically with its log entry.
// A change that would drive stock below zero fails with INSUFFICIENT_STOCK;
// the row lock taken by LockLevels makes that check race-free.
func (s *Service) AdjustStock(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if createdBy, ok := audit.ResolveActorID(ctx, in.CreatedBy); ok {
		in.CreatedBy = &createdBy
	}

	var result *AdjustResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		levels, err := s.repo.LockLevels(ctx, []id.ID{in.ProductID})
		if err != nil {
			return fmt.Errorf("lock stock: %w", err)
		}
		level, ok := levels[in.ProductID]
		if !ok {
			return apperror.NewNotFound("product", in.ProductID.String())
		}

		delta := in.MovementType.Delta(in.Quantity)
		if level.StockQuantity+delta < 0 {
			return apperror.NewInsufficientStock(level.ProductID.String(), level.Name, -delta, level.StockQuantity)
		}

		quantities, err := s.repo.ApplyDeltas(ctx, map[id.ID]int{in.ProductID: delta})
		if err != nil {
			return fmt.Errorf("apply stock delta: %w", err)
		}
		newQty := quantities[in.ProductID]

		movement := NewMovement(in.ProductID, in.MovementType, in.Quantity)
		movement.Notes = in.Notes
		movement.CreatedBy = in.CreatedBy
		if err := s.repo.AppendMovements(ctx, []*Movement{movement}); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		evts := []events.Event{{
			AggregateType: events.AggregateProduct,
			AggregateID:   in.ProductID,
			EventType:     events.StockAdjusted,
			Payload: events.StockAdjustedPayload{
				ProductID:    in.ProductID,
				MovementID:   movement.ID,
				MovementType: string(in.MovementType),
				Quantity:     in.Quantity,
				NewQuantity:  newQty,
			},
		}}
		if level.CrossesReorderLevel(newQty) {
			evts = append(evts, events.LowStock(level.ProductID, level.Name, newQty, level.ReorderLevel))
		}
		if err := s.events.Publish(ctx, evts...); err != nil {
			return fmt.Errorf("publish stock events: %w", err)
		}

		result = &AdjustResult{Movement: movement, NewQuantity: newQty}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", in.ProductID,
		"movement_type", in.MovementType,
		"quantity", in.Quantity,
		"new_quantity", result.NewQuantity)

	return result, nil
}

// RecordInitialStock logs the opening balance of a newly created product.
// Must run inside the product's create transaction.
func (s *Service) RecordInitialStock(ctx context.Context, productID id.ID, quantity int, createdBy *id.ID) error {
	if quantity <= 0 {
		return nil
	}
	movement := NewMovement(productID, MovementIn, quantity)
	notes := "Initial stock"
	movement.Notes = &notes
	movement.CreatedBy = createdBy
	return s.repo.AppendMovements(ctx, []*Movement{movement})
}

// ListMovements returns recent movements, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]*Movement, error) {
	filter.Limit = domain.ClampLimit(filter.Limit, 100)
	return s.repo.ListMovements(ctx, filter)
}

// SortedIDs returns the keys of m in ascending order, the lock order
// used by every caller of LockLevels.
func SortedIDs[V any](m map[id.ID]V) []id.ID {
	ids := make([]id.ID, 0, len(m))
	for k := range m {
		ids = append(ids, k)
	}
	slices.SortFunc(ids, func(a, b id.ID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}
