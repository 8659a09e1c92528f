package auth

import (
	"context"

	apperrors "agrirent/pkg/errors"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleOwner  Role = "owner"
)

// Identity is the authenticated caller, injected into the request context
// by the verifier.
type Identity struct {
	UserID string
	Role   Role
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireIdentity is for handlers on guarded routes where absence of an
// identity means the route was wired without the verifier.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, apperrors.Unauthorized("authentication required")
	}
	return id, nil
}
