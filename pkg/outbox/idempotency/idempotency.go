// Package idempotency deduplicates at-least-once event deliveries per consumer.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

var (
	errNoConsumer = errors.New("consumer name is required")
	errNoEvent    = errors.New("event id is required")
)

// Manager claims event IDs for a consumer. A claim is a redis key
// sf:idempotency:evt:<consumer>:<event_id> that lives for ttl; a zero ttl
// keeps it until released.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Claim reports whether this delivery is the first one seen for the event.
// A false result means another delivery already owns it.
func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
}

// Release drops a claim so a redelivery can retry the event.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errNoConsumer
	}
	if eventID == uuid.Nil {
		return "", errNoEvent
	}
	return m.store.IdempotencyKey("evt:"+consumer, eventID.String()), nil
}
