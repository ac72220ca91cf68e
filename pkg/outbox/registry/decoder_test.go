package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
)

func TestOrderDecodersDecodeStatusChange(t *testing.T) {
	orderID := uuid.New()
	data, err := json.Marshal(payloads.OrderStatusChangedEvent{OrderID: orderID})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out, err := OrderDecoders().Decode(enums.EventOrderStatusChanged, outbox.PayloadEnvelope{Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	event, ok := out.(*payloads.OrderStatusChangedEvent)
	if !ok || event.OrderID != orderID {
		t.Fatalf("unexpected output %#v", out)
	}
}

func TestDecoderRegistryVersioning(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderCreated, 2, func(data json.RawMessage) (any, error) {
		return "v2", nil
	})

	if out, err := reg.Decode(enums.EventOrderCreated, outbox.PayloadEnvelope{Version: 2}); err != nil || out != "v2" {
		t.Fatalf("expected v2 decoder, got %v (%v)", out, err)
	}

	_, err := reg.Decode(enums.EventOrderCreated, outbox.PayloadEnvelope{Version: 1})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error for unknown version, got %v", err)
	}
}

func TestDecoderRegistryRejectsMalformedData(t *testing.T) {
	_, err := OrderDecoders().Decode(enums.EventOrderCreated, outbox.PayloadEnvelope{Version: 1, Data: json.RawMessage(`[1,2]`)})
	var nonRetryable NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}
