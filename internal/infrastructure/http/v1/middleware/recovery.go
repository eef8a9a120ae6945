package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/pkg/logger"
)

// Recovery converts a handler panic into a 500 response.
//
// It renders the body itself: ErrorHandler sits further down the chain and has
// already unwound by the time the panic reaches this frame. A pending
// idempotency key is released so the till can retry the sale.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()

			if clientGone(rec) {
				logger.Warn(ctx, "client disconnected", "route", c.FullPath(), "error", rec)
				c.Abort()
				return
			}

			err := fmt.Errorf("panic in %s %s: %v", c.Request.Method, c.FullPath(), rec)
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			logger.Error(ctx, "panic recovered", "error", err, "stack", string(debug.Stack()))

			body := ErrorBody{
				Code:    apperror.CodeInternal,
				Message: "Internal server error",
				Details: map[string]any{"request_id": appctx.RequestID(ctx)},
			}
			settleIdempotency(c, http.StatusInternalServerError, body)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}

// clientGone reports panics caused by writing to a closed connection.
func clientGone(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, http.ErrAbortHandler)
}
