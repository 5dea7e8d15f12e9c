package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/ecom-backend/internal/users"
	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "ecom-test", ExpirationMinutes: 60}

func testVerifier() *pkgAuth.Verifier {
	return pkgAuth.NewVerifierWithKeys(testJWT, config.IdentityConfig{AdminRole: "admin"}, nil)
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintLocalToken(testJWT, time.Now(), pkgAuth.LocalTokenPayload{
		UserID:    userID,
		Email:     "user@example.com",
		Name:      "User",
		Role:      role,
		AdminRole: "admin",
	})
	require.NoError(t, err)
	return token
}

type stubResolver struct {
	user *users.UserDTO
	err  error
	seen pkgAuth.Identity
}

func (s *stubResolver) Resolve(_ context.Context, identity pkgAuth.Identity) (*users.UserDTO, error) {
	s.seen = identity
	return s.user, s.err
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testVerifier(), nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testVerifier(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer error="invalid_token"`, rec.Header().Get("WWW-Authenticate"))
}

func TestAuthRejectsTokenSignedWithAnotherSecret(t *testing.T) {
	other := config.JWTConfig{Secret: "other", Issuer: testJWT.Issuer, ExpirationMinutes: 5}
	token, err := pkgAuth.MintLocalToken(other, time.Now(), pkgAuth.LocalTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Auth(testVerifier(), nil)(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthSeedsIdentity(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.UserRoleAdmin)

	var identity pkgAuth.Identity
	handler := Auth(testVerifier(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		identity, ok = IdentityFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), identity.Subject)
	assert.Equal(t, []string{"admin"}, identity.Roles)
}

func TestResolveUserStoresUserAndAuthority(t *testing.T) {
	user := &users.UserDTO{ID: uuid.New(), Role: enums.UserRoleCustomer}
	resolver := &stubResolver{user: user}

	var gotUser, gotRole string
	handler := ResolveUser(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), pkgAuth.Identity{Subject: "kc-1"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kc-1", resolver.seen.Subject)
	assert.Equal(t, user.ID.String(), gotUser)
	assert.Equal(t, "ROLE_CUSTOMER", gotRole)
}

func TestResolveUserPropagatesErrors(t *testing.T) {
	resolver := &stubResolver{err: pkgerrors.New(pkgerrors.CodeConflict, "external identity mismatch")}
	handler := ResolveUser(resolver, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), pkgAuth.Identity{Subject: "kc-1"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResolveUserRequiresIdentity(t *testing.T) {
	handler := ResolveUser(&stubResolver{}, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.UserRoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleCustomer.Authority()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), enums.UserRoleAdmin.Authority()))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
