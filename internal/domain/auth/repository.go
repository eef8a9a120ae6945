package auth

import (
	"context"

	"shoppos/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user. Duplicate email → DUPLICATE_ENTRY.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves users ordered by name.
	List(ctx context.Context, filter UserFilter) ([]*User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int64, error)

	// SetActive enables or disables a user.
	SetActive(ctx context.Context, userID id.ID, active bool) error

	// RecordLogin stamps last_login_at.
	RecordLogin(ctx context.Context, userID id.ID) error
}
