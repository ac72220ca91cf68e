package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Key families under the sf namespace.
const (
	namespace = "sf"

	familyIdempotency = "idempotency"
	familyRateLimit   = "rate_limit"
	familyLock        = "lock"
	familySession     = "session"
)

// ErrNotInitialized is returned by a zero Client.
var ErrNotInitialized = errors.New("redis client not initialized")

type commands interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// IdempotencyStore is what the idempotency middleware and event dedup need.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// Client wraps go-redis with the storefront key layout. It backs idempotent
// writes, auth throttling, refresh sessions and the cron lock.
type Client struct {
	cmds   commands
	closer func() error
}

// New connects using cfg and fails fast when the server does not answer.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
			"pool_size":  opts.PoolSize,
		}), "redis.connected")
	}
	return &Client{cmds: rdb, closer: rdb.Close}, nil
}

// options prefers the URL; explicit pool and timeout settings fill whatever
// the URL leaves unset.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}
	opts.DB = cmp.Or(opts.DB, cfg.DB)
	opts.PoolSize = cmp.Or(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = cmp.Or(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = cmp.Or(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = cmp.Or(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = cmp.Or(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func (c *Client) ready() bool {
	return c != nil && c.cmds != nil
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.ready() {
		return ErrNotInitialized
	}
	return c.cmds.Ping(ctx).Err()
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.ready() {
		return ErrNotInitialized
	}
	return c.cmds.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if !c.ready() {
		return "", ErrNotInitialized
	}
	return c.cmds.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if !c.ready() {
		return false, ErrNotInitialized
	}
	return c.cmds.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if !c.ready() {
		return ErrNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return c.cmds.Del(ctx, keys...).Err()
}

// FixedWindowAllow records one hit for scope and reports whether the window
// is still under limit. The counter is created with its expiry before the
// increment, so a window can never outlive its TTL.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if !c.ready() {
		return false, 0, ErrNotInitialized
	}
	key := c.RateLimitKey(scope)
	if err := c.cmds.SetNX(ctx, key, 0, window).Err(); err != nil {
		return false, 0, fmt.Errorf("open window %s: %w", key, err)
	}
	hits, err := c.cmds.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("count hit %s: %w", key, err)
	}
	return hits <= limit, hits, nil
}

func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key(familyIdempotency, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return key(familyRateLimit, scope)
}

// LockKey names a distributed lock such as the cron cycle.
func (c *Client) LockKey(name string) string {
	return key(familyLock, name)
}

// AccessSessionKey holds the refresh digest bound to an access token id.
func (c *Client) AccessSessionKey(accessID string) string {
	return key(familySession, "access", accessID)
}

func key(parts ...string) string {
	kept := []string{namespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ":")
}
