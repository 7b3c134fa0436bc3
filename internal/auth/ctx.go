package auth

import (
	"context"

	"github.com/google/uuid"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaims sets the resolved session claims in the given context. The
// session middleware constructs this once per request; downstream handlers
// never re-derive identity themselves.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext finds the session claims from the context.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok
}

// UserIDFromContext returns the authenticated user's id, or uuid.Nil when
// the request carries no resolved identity.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}

	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
