// Package auth provides authentication and authorization domain logic.
package auth

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
)

var validate = validator.New()

// User represents a system user.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new active user.
func NewUser(name, email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Permissions returns the permissions granted by the user's role.
func (u *User) Permissions() []string {
	return u.Role.Permissions()
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Normalize trims input and lower-cases the email.
func (r RegisterRequest) Normalize() RegisterRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	return r
}

// Validate checks required fields.
func (r RegisterRequest) Validate(minPassword int) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if r.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if err := validate.Var(r.Email, "email,max=255"); err != nil {
		return apperror.NewValidation("email is invalid").WithDetail("field", "email")
	}
	if len(r.Password) < minPassword {
		return apperror.NewValidation("password is too short").
			WithDetail("field", "password").
			WithDetail("min_length", minPassword)
	}
	return nil
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	Role     Role
	Limit    int
	Offset   int
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
