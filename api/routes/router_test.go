package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ecom-backend/internal/analytics"
	"github.com/angelmondragon/ecom-backend/internal/cart"
	"github.com/angelmondragon/ecom-backend/internal/orders"
	"github.com/angelmondragon/ecom-backend/internal/users"
	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/metrics"
	"github.com/angelmondragon/ecom-backend/pkg/pagination"
)

var testJWT = config.JWTConfig{Secret: "router-secret", Issuer: "ecom-test", ExpirationMinutes: 30}

const adminRole = "admin"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

// stubUsers resolves every identity to a user whose role follows the token.
type stubUsers struct {
	users.Service
}

func (stubUsers) Resolve(_ context.Context, identity pkgAuth.Identity) (*users.UserDTO, error) {
	id, err := uuid.Parse(identity.Subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "bad subject")
	}
	return &users.UserDTO{ID: id, Email: identity.Email, Role: users.DeriveRole(identity.Roles, adminRole)}, nil
}

type stubCart struct {
	cart.Service
}

func (stubCart) ActiveCart(_ context.Context, userID uuid.UUID) (*orders.OrderView, error) {
	return &orders.OrderView{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusPending, Items: []orders.ItemView{}}, nil
}

type stubOrders struct {
	orders.Service
}

func (stubOrders) Track(_ context.Context, trackingID string) (*orders.TrackingView, error) {
	if _, err := uuid.Parse(trackingID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tracking id")
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrders) ListAllPlaced(context.Context, pagination.Params) (pagination.Page[orders.OrderView], error) {
	return pagination.Page[orders.OrderView]{Items: []orders.OrderView{}}, nil
}

type stubAnalytics struct{}

func (stubAnalytics) Summary(context.Context) (*analytics.Summary, error) {
	return &analytics.Summary{TotalOrders: 2}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  testJWT,
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	return NewRouter(Dependencies{
		Config:      cfg,
		DB:          stubPinger{},
		Verifier:    pkgAuth.NewVerifierWithKeys(testJWT, config.IdentityConfig{AdminRole: adminRole}, nil),
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Users:       stubUsers{},
		Cart:        stubCart{},
		Orders:      stubOrders{},
		Analytics:   stubAnalytics{},
	})
}

func bearer(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintLocalToken(testJWT, time.Now(), pkgAuth.LocalTokenPayload{
		UserID:    uuid.New(),
		Email:     "caller@example.com",
		Name:      "Caller",
		Role:      role,
		AdminRole: adminRole,
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router http.Handler, method, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsEndpointExportsRequests(t *testing.T) {
	router := newTestRouter(t)
	serve(router, http.MethodGet, "/health/live", "")

	resp := serve(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "http_requests_total"))
}

func TestTrackOrderIsPublic(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/order/trackOrder/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/order/trackOrder/not-a-uuid", "").Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	router := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/customer/cart", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/customer/cart", "Bearer garbage").Code)
}

func TestCustomerRoutesEnforceRole(t *testing.T) {
	router := newTestRouter(t)
	customer := bearer(t, enums.UserRoleCustomer)
	admin := bearer(t, enums.UserRoleAdmin)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/customer/cart", customer).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/customer/cart", admin).Code)
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	router := newTestRouter(t)
	customer := bearer(t, enums.UserRoleCustomer)
	admin := bearer(t, enums.UserRoleAdmin)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/admin/order/analytics", admin).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/admin/placedOrders", admin).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/admin/order/analytics", customer).Code)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/ping", bearer(t, enums.UserRoleCustomer)).Code)
}
