package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RateLimiter counts hits per scope inside a fixed window.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth endpoint by client address and by
// the email in the request body. A zero limit turns that dimension off.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{Name: name, Window: window, IPLimit: ipLimit, EmailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

type rateCheck struct {
	dimension string
	subject   string
	limit     int
}

func AuthRateLimit(policy AuthRateLimitPolicy, limiter RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]rateCheck, 0, 2)
			if policy.IPLimit > 0 {
				if ip := clientIP(r); ip != "" {
					checks = append(checks, rateCheck{"ip", ip, policy.IPLimit})
				}
			}
			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := emailFromBody(body); email != "" {
					checks = append(checks, rateCheck{"email", sha256Hex(email), policy.EmailLimit})
				}
			}

			for _, c := range checks {
				scope := policy.Name + ":" + c.dimension + ":" + c.subject
				ok, hits, err := limiter.FixedWindowAllow(ctx, scope, int64(c.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !ok {
					rejectRateLimited(ctx, logg, w, policy, c, hits)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, c rateCheck, hits int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.Name,
			"dimension":      c.dimension,
			"subject":        c.subject,
			"hits":           hits,
			"limit":          c.limit,
			"window_seconds": int(policy.Window.Seconds()),
		}), "auth.rate_limited")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later").
		WithDetails(map[string]any{"scope": c.dimension}))
}

// clientIP prefers the first X-Forwarded-For hop set by the load balancer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
