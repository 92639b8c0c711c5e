package graphql

import (
	"context"

	"github.com/dmitrijs2005/gophcoach/internal/server/models"
)

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "requestID"
)

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity, anonymous when none is attached.
func IdentityFrom(ctx context.Context) models.Identity {
	if id, ok := ctx.Value(identityKey).(models.Identity); ok {
		return id
	}
	return models.Anonymous
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
