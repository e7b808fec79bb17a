package userctx

import (
	"context"

	"github.com/ridematch/auth-service/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Create a new context carrying the authenticated identity
func New(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Extract the authenticated identity from the context
func FromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}
