package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// DomainEvent is what a service hands to Emit. Data is marshalled into the
// envelope's data field as is.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) validate() error {
	switch {
	case !e.EventType.IsValid():
		return fmt.Errorf("unsupported event type %q", e.EventType)
	case !e.AggregateType.IsValid():
		return fmt.Errorf("unsupported aggregate type %q", e.AggregateType)
	case e.AggregateID == uuid.Nil:
		return errors.New("aggregate id is required")
	}
	return nil
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit writes the event through tx, so it only becomes visible to the
// publisher if the caller's transaction commits.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if err := event.validate(); err != nil {
		return err
	}
	raw, eventID, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", event.EventType, err)
	}
	if err := s.repo.Insert(tx, models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       raw,
	}); err != nil {
		return err
	}

	if s.logg != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":     eventID,
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		}), "outbox.queued")
	}
	return nil
}
