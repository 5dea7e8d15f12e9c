package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/ecom-backend/api/responses"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
)

// RequireRole admits callers whose resolved authority matches one of roles.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, role.Authority())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if authority := RoleFromContext(ctx); !slices.Contains(allowed, authority) {
				if logg != nil {
					logg.Debug(logg.WithFields(ctx, map[string]any{
						"path":      r.URL.Path,
						"authority": authority,
					}), "auth.role_denied")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role for this route"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
