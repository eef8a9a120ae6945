// Package numerator provides the PostgreSQL implementation of sequential
// bill numbering. It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "shoppos/internal/core/numerator"
	"shoppos/internal/infrastructure/storage/postgres"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service allocates numbers from the sys_sequences counter table.
//
// Allocation is strict: each number is an UPSERT ... RETURNING on the
// counter row. Run inside the caller's transaction, the row lock serializes
// concurrent allocations and a rollback returns the number.
type Service struct {
	querier func(ctx context.Context) Querier
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator that joins the transaction carried by ctx.
func New(txManager *postgres.TxManager) *Service {
	return &Service{
		querier: func(ctx context.Context) Querier { return txManager.GetQuerier(ctx) },
	}
}

// NewWithQuerier creates a numerator bound to a fixed querier.
func NewWithQuerier(q Querier) *Service {
	return &Service{
		querier: func(context.Context) Querier { return q },
	}
}

// GetNextNumber allocates the next number, e.g. INV-000042.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1, updated_at = NOW()
		RETURNING current_val
	`, cfg.Key()).Scan(&num)
	if err != nil {
		return "", postgres.TranslateError(fmt.Errorf("next %s number: %w", cfg.Prefix, err))
	}

	return cfg.Format(num), nil
}

// SetNextNumber moves the counter so the next allocation returns value+1.
// Used by the seeder to align the counter with bills imported from elsewhere.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, value int64) error {
	if value < 0 {
		return fmt.Errorf("counter value must not be negative: %d", value)
	}

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2, updated_at = NOW()
		RETURNING current_val
	`, cfg.Key(), value).Scan(&result)
	if err != nil {
		return postgres.TranslateError(fmt.Errorf("set %s counter: %w", cfg.Prefix, err))
	}
	return nil
}
