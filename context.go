package logkit

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID derives a context carrying the correlation id. The parent
// context acts as the restore token: code that held it before the call
// simply keeps using it, so nested set/restore pairs come for free and
// concurrent chains never observe each other's values.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the chain's correlation id, or DefaultRequestID
// when none has been set.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return DefaultRequestID
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != emptyString {
		return id
	}
	return DefaultRequestID
}

// NewRequestID mints a fresh correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

// ContextWithNewRequestID derives a context with a freshly minted id and
// returns both, for use at the start of a unit of work.
func ContextWithNewRequestID(ctx context.Context) (context.Context, string) {
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
