package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
)

// JWTValidator resolves a bearer token to the calling user.
type JWTValidator interface {
	ValidateToken(token string) (*appctx.UserContext, error)
}

// Auth requires a valid bearer token. Expired tokens get a distinct reason
// so tills can send the cashier back to the login screen instead of showing
// an error.
func Auth(v JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			rejectToken(c, "invalid_request", "missing or malformed authorization header")
			return
		}
		user, err := v.ValidateToken(token)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			rejectToken(c, "invalid_token", "token expired")
			return
		case err != nil:
			rejectToken(c, "invalid_token", "invalid token")
			return
		}
		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is sent and otherwise
// lets the request through anonymously. Registration uses it: the first
// account may be created without logging in.
func OptionalAuth(v JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if user, err := v.ValidateToken(token); err == nil && user != nil {
				c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// rejectToken answers 401 with an RFC 6750 challenge.
func rejectToken(c *gin.Context, code, reason string) {
	c.Header("WWW-Authenticate", `Bearer realm="shoppos", error="`+code+`"`)
	_ = c.Error(apperror.NewUnauthorized(reason).WithDetail("reason", reason))
	c.Abort()
}
