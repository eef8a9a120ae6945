// Package context carries the caller and trace of a unit of work through
// context.Context.
package context

import (
	"context"
	"slices"
)

// SystemUserID attributes work done by the seed and worker binaries.
const SystemUserID = "system"

// UserContext is the authenticated caller as resolved from the bearer token.
// Permissions are the caller's role grants at the time of the request.
type UserContext struct {
	UserID      string
	Email       string
	Name        string
	Role        string
	Permissions []string
	IsAdmin     bool
}

// HasPermission is false for a nil user and true for admins.
func (u *UserContext) HasPermission(perm string) bool {
	return u != nil && (u.IsAdmin || slices.Contains(u.Permissions, perm))
}

type userKey struct{}

func WithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// AsSystem returns ctx acting as an admin with SystemUserID, for maintenance
// jobs that have no logged-in caller.
func AsSystem(ctx context.Context) context.Context {
	return WithUser(ctx, &UserContext{UserID: SystemUserID, Role: "admin", IsAdmin: true})
}

// GetUser returns the caller, or nil for anonymous work.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}

func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

func GetRole(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Role
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsAdmin
}
