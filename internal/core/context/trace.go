package context

import (
	"context"

	"github.com/google/uuid"
)

// Trace origins.
const (
	OriginHTTP   = "http"
	OriginWorker = "worker"
	OriginSeed   = "seed"
)

// TraceContext correlates the log lines of one unit of work. For HTTP that
// is a request; the worker opens one per outbox batch.
type TraceContext struct {
	TraceID   string
	RequestID string
	Origin    string
}

type traceContextKey struct{}

// WithTrace attaches t to ctx.
func WithTrace(ctx context.Context, t *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, t)
}

// GetTrace returns the TraceContext attached to ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	t, _ := ctx.Value(traceContextKey{}).(*TraceContext)
	return t
}

// RequestID is the request id carried by ctx, "" outside a trace.
func RequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// StartTrace opens a fresh trace for work that has no incoming request.
// Trace and request ids are the same value there.
func StartTrace(ctx context.Context, origin string) context.Context {
	id := uuid.NewString()
	return WithTrace(ctx, &TraceContext{TraceID: id, RequestID: id, Origin: origin})
}
