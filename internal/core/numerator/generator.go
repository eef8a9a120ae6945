package numerator

import (
	"context"
)

// Generator allocates sequential numbers.
// This is the domain contract - implementations live in infrastructure layer.
type Generator interface {
	// GetNextNumber allocates the next number for cfg.
	// When ctx carries a transaction the allocation joins it, so a rollback
	// releases the number and no value is spent on a failed attempt.
	GetNextNumber(ctx context.Context, cfg Config) (string, error)

	// SetNextNumber moves the counter so the next allocation returns value+1.
	SetNextNumber(ctx context.Context, cfg Config, value int64) error
}
