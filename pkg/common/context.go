package common

import (
	"context"

	"voidstate/domain/core/valueobjects"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyClientID ContextKey = "client_id"
)

// WithClientID adds the caller identity to context
func WithClientID(ctx context.Context, id valueobjects.ClientID) context.Context {
	return context.WithValue(ctx, ContextKeyClientID, id)
}

// GetClientID extracts the caller identity from context, falling back to
// the shared unknown identity.
func GetClientID(ctx context.Context) valueobjects.ClientID {
	if id, ok := ctx.Value(ContextKeyClientID).(valueobjects.ClientID); ok {
		return id
	}
	return valueobjects.NewClientID("")
}
