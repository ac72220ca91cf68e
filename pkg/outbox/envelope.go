package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type ActorRef struct {
	UserID uuid.UUID      `json:"userId"`
	Role   enums.UserRole `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload_json and
// published verbatim. Consumers dedupe on EventID.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	err := json.Unmarshal(raw, &envelope)
	return envelope, err
}

// encodeEnvelope defaults the version to 1 and the occurrence time to now.
func encodeEnvelope(event DomainEvent) (json.RawMessage, string, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, "", err
	}
	envelope := PayloadEnvelope{
		Version:    max(event.Version, 1),
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	if envelope.OccurredAt.IsZero() {
		envelope.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", err
	}
	return raw, envelope.EventID, nil
}
