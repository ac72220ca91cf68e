package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

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
	f.data[key], _ = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		delete(f.ttls, k)
	}
	return nil
}

func keyedRequest(method, pattern, key, body string) *http.Request {
	req := httptest.NewRequest(method, pattern, strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:4321"
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	return payload.Error.Code
}

func TestIdempotencyTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"place order", http.MethodPost, "/api/v1/orders", orderIdempotencyTTL, true},
		{"register", http.MethodPost, "/api/v1/auth/register", defaultIdempotencyTTL, true},
		{"cart line", http.MethodPost, "/api/v1/cart/lines", defaultIdempotencyTTL, true},
		{"admin order update", http.MethodPatch, "/api/admin/v1/orders/{orderId}", defaultIdempotencyTTL, true},
		{"order read", http.MethodGet, "/api/v1/orders", 0, false},
		{"cart remove", http.MethodDelete, "/api/v1/cart/lines/{variantId}", 0, false},
		{"login", http.MethodPost, "/api/v1/auth/login", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := idempotencyTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	called := false
	handler := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/v1/orders", "", `{"lines":[]}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run without an idempotency key")
	}
}

func TestIdempotencyReplaysStoredOrder(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"o-1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, keyedRequest(http.MethodPost, "/api/v1/orders", "abc", `{"lines":[1]}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replayed := httptest.NewRecorder()
	handler.ServeHTTP(replayed, keyedRequest(http.MethodPost, "/api/v1/orders", "abc", `{"lines":[1]}`))
	if replayed.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replayed.Code)
	}
	if replayed.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content type to be replayed")
	}
	if replayed.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if replayed.Body.String() != `{"data":{"id":"o-1"}}` {
		t.Fatalf("unexpected replay body %s", replayed.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for key, ttl := range store.ttls {
		if ttl != orderIdempotencyTTL {
			t.Fatalf("record %s stored with ttl %v", key, ttl)
		}
	}
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	handler := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, "/api/v1/orders", "xyz", `{"lines":[1]}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, keyedRequest(http.MethodPost, "/api/v1/orders", "xyz", `{"lines":[2]}`))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected %s got %s", pkgerrors.CodeIdempotency, code)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newFakeStore()
	var inner *httptest.ResponseRecorder
	var handler http.Handler
	handler = Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the same key arrives again while this order is still being placed
		inner = httptest.NewRecorder()
		handler.ServeHTTP(inner, keyedRequest(http.MethodPost, "/api/v1/orders", "dup", `{"lines":[1]}`))
		w.WriteHeader(http.StatusCreated)
	}))

	outer := httptest.NewRecorder()
	handler.ServeHTTP(outer, keyedRequest(http.MethodPost, "/api/v1/orders", "dup", `{"lines":[1]}`))

	if outer.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", outer.Code)
	}
	if inner == nil || inner.Code != http.StatusConflict {
		t.Fatalf("expected the concurrent duplicate to be rejected, got %v", inner)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, keyedRequest(http.MethodPost, "/api/v1/orders", "retry", `{}`))
	if len(store.data) != 0 {
		t.Fatalf("expected no record after a server error, got %v", store.data)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, keyedRequest(http.MethodPost, "/api/v1/orders", "retry", `{}`))
	if second.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("expected retry to run the handler again, code=%d calls=%d", second.Code, calls)
	}
}

func TestIdempotencyScopesRecordsPerCaller(t *testing.T) {
	store := newFakeStore()
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, user := range []string{"user-a", "user-b", ""} {
		req := keyedRequest(http.MethodPost, "/api/v1/orders", "same-key", `{"lines":[]}`)
		if user != "" {
			req = req.WithContext(WithUserID(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	}
	if calls != 3 {
		t.Fatalf("expected handler to run once per caller, ran %d", calls)
	}
	guestKey := "fake:guest:10.0.0.1|POST|/api/v1/orders:same-key"
	if _, ok := store.data[guestKey]; !ok {
		t.Fatalf("expected guest record under %s, have %v", guestKey, store.data)
	}
}

func TestIdempotencyPassesThroughUnlistedRoutes(t *testing.T) {
	called := false
	handler := Idempotency(newFakeStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), keyedRequest(http.MethodPost, "/api/v1/auth/login", "", `{}`))
	if !called {
		t.Fatalf("expected unlisted route to reach the handler")
	}
}
