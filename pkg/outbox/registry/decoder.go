package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

// Decoder turns envelope data into a typed payload.
type Decoder func(data json.RawMessage) (any, error)

// JSONDecoder decodes into a fresh *T.
func JSONDecoder[T any]() Decoder {
	return func(data json.RawMessage) (any, error) {
		out := new(T)
		if err := json.Unmarshal(data, out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry lets consumers decode payloads per event type and
// envelope version, so a producer can bump a schema without breaking
// subscribers that still read the old one.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[decoderKey]Decoder
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]Decoder)}
}

// OrderDecoders knows v1 of every order event.
func OrderDecoders() *DecoderRegistry {
	r := NewDecoderRegistry()
	r.Register(enums.EventOrderCreated, 1, JSONDecoder[payloads.OrderCreatedEvent]())
	r.Register(enums.EventOrderStatusChanged, 1, JSONDecoder[payloads.OrderStatusChangedEvent]())
	return r
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[decoderKey{eventType, version}] = decoder
}

// Decode picks the decoder for the envelope's version (0 reads as 1). A
// missing decoder or malformed data is a NonRetryableError.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (any, error) {
	version := envelope.Version
	if version == 0 {
		version = 1
	}
	r.mu.RLock()
	decoder, ok := r.decoders[decoderKey{eventType, version}]
	r.mu.RUnlock()
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("no decoder for %s@v%d", eventType, version))
	}
	payload, err := decoder(envelope.Data)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s@v%d: %w", eventType, version, err))
	}
	return payload, nil
}
