package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/ecom-backend/api/responses"
	"github.com/angelmondragon/ecom-backend/api/validators"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeOrderPath = "/api/customer/placeOrder"

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = WithUserID(ctx, "user-1")
	return req.WithContext(ctx)
}

func placeOrderRequest(body, key string) *http.Request {
	req := requestWithPattern(http.MethodPost, placeOrderPath, placeOrderPath, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestReplayableRoutes(t *testing.T) {
	assert.True(t, replayableRoute(http.MethodPost, placeOrderPath))
	assert.True(t, replayableRoute(http.MethodPost, "/sign-up"))
	assert.False(t, replayableRoute(http.MethodGet, placeOrderPath))
	assert.False(t, replayableRoute(http.MethodPost, "/authenticate"))
	assert.False(t, replayableRoute(http.MethodPost, ""))
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, placeOrderRequest(`{"address":"x"}`, ""))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyRejectsOversizedBody(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"address":"` + strings.Repeat("a", int(validators.MaxBodyBytes)) + `"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placeOrderRequest(body, "big"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds")
	assert.Zero(t, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, placeOrderRequest(`{"address":"x"}`, "abc"))
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, placeOrderRequest(`{"address":"x"}`, "abc"))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, strings.TrimSpace(replay.Body.String()))
	assert.Equal(t, "true", replay.Header().Get(IdempotencyReplayHeader))
	assert.Empty(t, first.Header().Get(IdempotencyReplayHeader))
	assert.Equal(t, 1, calls)

	key := store.IdempotencyKey("user-1|POST|"+placeOrderPath, "abc")
	assert.Equal(t, time.Hour, store.ttls[key])
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), placeOrderRequest(`{"address":"x"}`, "xyz"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placeOrderRequest(`{"address":"y"}`, "xyz"))
	require.Equal(t, http.StatusConflict, rec.Code)

	var payload responses.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), placeOrderRequest(`{}`, "retry"))
	handler.ServeHTTP(httptest.NewRecorder(), placeOrderRequest(`{}`, "retry"))
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(okHandler())

	req := requestWithPattern(http.MethodPost, "/api/customer/addition", "/api/customer/addition", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, store.data)
}

func TestIdempotencyRejectsConcurrentRepeat(t *testing.T) {
	store := newFakeStore()
	scope := "user-1|POST|" + placeOrderPath
	store.data[store.IdempotencyKey(scope+"|inflight", "busy")] = "1"

	calls := 0
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placeOrderRequest(`{}`, "busy"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyReleasesLockAfterSuccess(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), placeOrderRequest(`{}`, "k1"))
	scope := "user-1|POST|" + placeOrderPath
	assert.NotContains(t, store.data, store.IdempotencyKey(scope+"|inflight", "k1"))
	assert.Contains(t, store.data, store.IdempotencyKey(scope, "k1"))
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	handler := Idempotency(newFakeStore(), time.Hour, nil)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, placeOrderRequest(`{}`, strings.Repeat("k", maxIdempotencyKeyLen+1)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
