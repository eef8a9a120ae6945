package dto

import (
	"shoppos/internal/domain/auth"
)

// RegisterRequest for user registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin cashier"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
	}
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

// LoginResponse is the token plus the logged-in user.
type LoginResponse struct {
	*auth.TokenPair
	User *auth.User `json:"user"`
}

// SetStatusRequest enables or disables a user.
type SetStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UserListQuery filters users.
type UserListQuery struct {
	PageQuery
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin cashier"`
	IsActive *bool  `form:"is_active"`
}
