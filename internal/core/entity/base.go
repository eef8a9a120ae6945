// Package entity provides shared building blocks for domain entities.
package entity

import (
	"context"
	"time"

	"shoppos/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Base contains the identity and timestamps shared by stored entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewBase creates a Base with a generated ID and current timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes the update timestamp.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Activatable is embedded by entities that are deactivated instead of deleted.
type Activatable struct {
	IsActive bool `db:"is_active" json:"is_active"`
}

// Deactivate performs a soft delete.
func (a *Activatable) Deactivate() {
	a.IsActive = false
}
