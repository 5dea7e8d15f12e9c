package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
)

type ctxKey uint8

const (
	keyUserID ctxKey = iota + 1
	keyRole
	keyIdentity
)

func valueOf[T any](ctx context.Context, key ctxKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func withValue(ctx context.Context, key ctxKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// UserIDFromContext returns the local account id set by ResolveUser, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := valueOf[string](ctx, keyUserID)
	return id
}

// RoleFromContext returns the caller's authority, e.g. ROLE_CUSTOMER.
func RoleFromContext(ctx context.Context) string {
	role, _ := valueOf[string](ctx, keyRole)
	return role
}

// IdentityFromContext returns the verified token identity set by Auth.
func IdentityFromContext(ctx context.Context) (pkgAuth.Identity, bool) {
	return valueOf[pkgAuth.Identity](ctx, keyIdentity)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, keyUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, keyRole, role)
}

func WithIdentity(ctx context.Context, identity pkgAuth.Identity) context.Context {
	return withValue(ctx, keyIdentity, identity)
}

// RequireUserID returns the resolved caller id, or UNAUTHORIZED when
// ResolveUser has not run for this request.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}
