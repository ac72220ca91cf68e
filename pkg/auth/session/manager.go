// Package session keeps refresh sessions in redis, keyed by the access
// token's jti. Only a digest of the refresh token is stored.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read side used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	store store
	ttl   time.Duration
}

// NewManager requires a refresh ttl strictly longer than the access token
// lifetime, otherwise refresh could never outlive the token it renews.
func NewManager(client *redis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newManager(client, cfg)
}

func newManager(s store, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.RefreshTokenTTL()
	access := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= access:
		return nil, fmt.Errorf("refresh token ttl %s must exceed access token ttl %s", ttl, access)
	}
	return &Manager{store: s, ttl: ttl}, nil
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errMissingAccessID
	}
	return m.open(ctx, accessID)
}

// Rotate exchanges a refresh token for a new session. The old session is
// removed only after the new one is stored.
func (m *Manager) Rotate(ctx context.Context, accessID, refreshToken string) (string, string, error) {
	if strings.TrimSpace(accessID) == "" || strings.TrimSpace(refreshToken) == "" {
		return "", "", ErrInvalidRefreshToken
	}
	oldKey := m.store.AccessSessionKey(accessID)
	stored, err := m.store.Get(ctx, oldKey)
	if errors.Is(err, goredis.Nil) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(refreshToken))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	nextID := NewAccessID()
	token, err := m.open(ctx, nextID)
	if err != nil {
		return "", "", err
	}
	if err := m.store.Del(ctx, oldKey); err != nil {
		return "", "", err
	}
	return nextID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, goredis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) open(ctx context.Context, accessID string) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), digest(token), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
