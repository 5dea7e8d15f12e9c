package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ecom-backend/api/responses"
	"github.com/angelmondragon/ecom-backend/api/validators"
	"github.com/angelmondragon/ecom-backend/internal/users"
	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (*pkgAuth.IdentityClaims, error)
}

// UserResolver maps a verified identity onto a local account.
type UserResolver interface {
	Resolve(ctx context.Context, identity pkgAuth.Identity) (*users.UserDTO, error)
}

// Auth validates the bearer token and seeds the request context with the
// verified identity.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				challenge(w, "")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if verifier == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "token verifier unavailable"))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				challenge(w, "invalid_token")
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveUser finds or provisions the local account for the verified
// identity, syncing its role, and stores the user id and authority on the
// context. It must run after Auth.
func ResolveUser(resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := resolver.Resolve(r.Context(), identity)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			userID := user.ID.String()
			authority := user.Role.Authority()
			ctx := WithUserID(r.Context(), userID)
			ctx = WithRole(ctx, authority)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
				ctx = logg.WithActorRole(ctx, authority)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// challenge sets the RFC 6750 WWW-Authenticate header on a 401.
func challenge(w http.ResponseWriter, errCode string) {
	value := "Bearer"
	if errCode != "" {
		value += ` error="` + errCode + `"`
	}
	w.Header().Set("WWW-Authenticate", value)
}
