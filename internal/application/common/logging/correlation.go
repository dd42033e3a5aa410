package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// CorrelationIDKey is the context key carrying the correlation ID across
// service calls, published messages and log entries.
const CorrelationIDKey contextKey = "correlation_id"

// GenerateCorrelationID returns a fresh correlation ID.
func GenerateCorrelationID() string {
	return uuid.New().String()
}

// WithCorrelationID returns a context carrying the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context, or
// returns the empty string when none is set.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// EnsureCorrelationID returns a context guaranteed to carry a correlation ID,
// generating one when the incoming context has none, along with the ID.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := GenerateCorrelationID()
	return WithCorrelationID(ctx, id), id
}
