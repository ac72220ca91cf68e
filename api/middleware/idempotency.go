package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"

	defaultIdempotencyTTL = 24 * time.Hour
	orderIdempotencyTTL   = 7 * 24 * time.Hour

	// inFlightTTL bounds how long a crashed request can block its key.
	inFlightTTL = time.Minute
)

type idempotencyRule struct {
	method string
	match  func(pattern string) bool
	ttl    time.Duration
}

var idempotencyRules = []idempotencyRule{
	{http.MethodPost, exactRoute("/api/v1/orders"), orderIdempotencyTTL},
	{http.MethodPost, exactRoute("/api/v1/auth/register"), defaultIdempotencyTTL},
	{http.MethodPost, exactRoute("/api/v1/cart/lines"), defaultIdempotencyTTL},
	{http.MethodPatch, routePrefix("/api/admin/v1/orders/"), defaultIdempotencyTTL},
}

// storedResponse is what a key resolves to in redis. Pending marks a
// request that is still running.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the first response of a keyed write. The key is scoped
// to the caller, or to the client address for guest checkouts.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotencyTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(r.Method, body)
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			existing, err := lookup(ctx, store, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if existing != nil {
				if err := replay(w, existing, hash); err != nil {
					responses.WriteError(ctx, logg, w, err)
				}
				return
			}

			reserved, err := reserve(ctx, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if !reserved {
				responses.WriteError(ctx, logg, w, errInFlight())
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if err := store.Del(ctx, key); err != nil {
				logError(ctx, logg, "release idempotency reservation", err)
				return
			}
			// server failures stay retryable under the same key
			if capture.statusCode() >= http.StatusInternalServerError {
				return
			}
			record := storedResponse{
				RequestHash: hash,
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}
			if err := save(ctx, store, key, record, ttl); err != nil {
				logError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func lookup(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*storedResponse, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	}
	var record storedResponse
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &record, nil
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	payload, err := json.Marshal(storedResponse{Pending: true, RequestHash: hash})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation")
	}
	ok, err := store.SetNX(ctx, key, string(payload), inFlightTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

func save(ctx context.Context, store pkgredis.IdempotencyStore, key string, record storedResponse, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = store.SetNX(ctx, key, string(payload), ttl)
	return err
}

func replay(w http.ResponseWriter, record *storedResponse, hash string) error {
	if record.RequestHash != hash {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	}
	if record.Pending {
		return errInFlight()
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
	return nil
}

func errInFlight() error {
	return pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress")
}

func idempotencyScope(r *http.Request) string {
	owner := UserIDFromContext(r.Context())
	if owner == "" {
		owner = "guest:" + clientIP(r)
	}
	return owner + "|" + r.Method + "|" + r.URL.Path
}

func requestHash(method string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func idempotencyTTL(method, pattern string) (time.Duration, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.match(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func exactRoute(path string) func(string) bool {
	return func(pattern string) bool { return pattern == path }
}

func routePrefix(prefix string) func(string) bool {
	return func(pattern string) bool { return strings.HasPrefix(pattern, prefix) }
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
