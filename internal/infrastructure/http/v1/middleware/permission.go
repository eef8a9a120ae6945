// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/pkg/logger"
)

// RequirePermission admits the request when the caller holds at least one of
// perms. It must run after Auth.
func RequirePermission(perms ...string) gin.HandlerFunc {
	if len(perms) == 0 {
		panic("middleware: RequirePermission needs at least one permission")
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := appctx.GetUser(ctx)
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if slices.ContainsFunc(perms, user.HasPermission) {
			c.Next()
			return
		}

		logger.Warn(ctx, "permission denied", "route", c.FullPath(), "required", perms)
		_ = c.Error(apperror.NewForbidden("insufficient permissions").
			WithDetail("required_permission", perms[0]).
			WithDetail("role", user.Role))
		c.Abort()
	}
}
