package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "shoppos/internal/core/context"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceID     = "X-Trace-ID"
	HeaderTraceParent = "traceparent"

	maxClientIDLen = 128
)

// Trace attaches a TraceContext to the request. Till clients may supply their
// own request id so a retried sale can be matched across both logs.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := clientID(c.GetHeader(HeaderRequestID))
		traceID := clientID(c.GetHeader(HeaderTraceID))
		if traceID == "" {
			traceID = traceIDFromParent(c.GetHeader(HeaderTraceParent))
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		if traceID == "" {
			traceID = requestID
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
			Origin:    appctx.OriginHTTP,
		}))
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)
		c.Next()
	}
}

// clientID drops header values that are too long to be an id.
func clientID(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > maxClientIDLen {
		return ""
	}
	return v
}

// traceIDFromParent extracts the trace-id field of a W3C traceparent header
// ("00-<32 hex>-<16 hex>-<2 hex>").
func traceIDFromParent(h string) string {
	parts := strings.Split(strings.TrimSpace(h), "-")
	if len(parts) != 4 || len(parts[1]) != 32 {
		return ""
	}
	if strings.Trim(parts[1], "0123456789abcdef") != "" || strings.Trim(parts[1], "0") == "" {
		return ""
	}
	return parts[1]
}
