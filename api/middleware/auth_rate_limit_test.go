package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type fakeLimiter struct {
	mu     sync.Mutex
	hits   map[string]int64
	window time.Duration
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{hits: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.window = window
	f.hits[scope]++
	return f.hits[scope] <= limit, f.hits[scope], nil
}

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = remote
	return req
}

func TestAuthRateLimitKeepsBodyReadable(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"ana@example.com"`) {
			t.Fatalf("unexpected body: %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("ana@example.com", "1.2.3.4:5678"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRateLimitEmailDimension(t *testing.T) {
	limiter := newFakeLimiter()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 2), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// case and whitespace differences count against the same address
	emails := []string{"blocked@example.com", " Blocked@Example.com", "BLOCKED@example.com"}
	for i, email := range emails {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(email, "9.9.9.9:1"))

		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: expected success before limit, got %d", i, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		var payload struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Error.Code)
		}
	}
	for scope := range limiter.hits {
		if strings.Contains(scope, "example.com") {
			t.Fatalf("raw email leaked into scope %q", scope)
		}
	}
}

func TestAuthRateLimitIPDimension(t *testing.T) {
	handler := AuthRateLimit(NewAuthRateLimitPolicy("register", time.Minute, 1, 0), newFakeLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("a@example.com", "5.6.7.8:1234"))
	if first.Code != http.StatusOK {
		t.Fatalf("expected success, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("b@example.com", "5.6.7.8:9999"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if got := second.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After 60, got %q", got)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	limiter := newFakeLimiter()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("", 0, 1, 1), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("x@example.com", "1.1.1.1:1"))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
	}
	if len(limiter.hits) != 0 {
		t.Fatalf("disabled policy should not touch the limiter")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:80"
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded client, got %q", got)
	}
}
