package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

// dispatch publishes one row and records the result on tx. The returned
// error is reserved for bookkeeping failures.
func (s *Service) dispatch(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	})

	resolved, err := s.registry.Resolve(row)
	if err != nil {
		return s.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, err)
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"topic":    resolved.Descriptor.Topic,
		"event_id": resolved.Envelope.EventID,
	})

	publishErr := s.publish(ctx, row, resolved)
	switch {
	case publishErr == nil:
		if err := s.repo.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		s.metrics.IncPublished(string(row.EventType))
		s.logg.Info(ctx, "outbox.published")
		return nil
	case isPermanent(publishErr):
		return s.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, publishErr)
	case row.AttemptCount+1 >= s.maxAttempts:
		return s.deadLetter(ctx, tx, row, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, publishErr))
	}

	if err := s.repo.MarkFailedTx(tx, row.ID, publishErr); err != nil {
		return fmt.Errorf("mark %s failed: %w", row.ID, err)
	}
	s.metrics.IncRetry(string(row.EventType))
	s.logg.Warn(s.logg.WithField(ctx, "error", publishErr.Error()), "outbox.publish_retry")
	return nil
}

func isPermanent(err error) bool {
	var nonRetryable registry.NonRetryableError
	return errors.As(err, &nonRetryable)
}

// deadLetter copies the row to the DLQ and retires it in the same
// transaction.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  row.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("dead letter %s: %w", row.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, row.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("retire %s: %w", row.ID, err)
	}
	s.metrics.IncDeadLettered(string(row.EventType), string(reason))
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"error_reason": reason,
		"error":        message,
	}), "outbox.dead_lettered")
	return nil
}

func (s *Service) publish(ctx context.Context, row models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher for topic %q returned no result", topic))
	}
	_, err := result.Get(ctx)
	return err
}

// cachedPublishers keeps one batching publisher per topic for the life of
// the process.
func cachedPublishers(client pubSubClient) publisherFactory {
	var (
		mu      sync.Mutex
		byTopic = map[string]publisher{}
	)
	return func(topic string) publisher {
		mu.Lock()
		defer mu.Unlock()
		if pub, ok := byTopic[topic]; ok {
			return pub
		}
		raw := client.Publisher(topic)
		if raw == nil {
			return nil
		}
		pub := gcpPublisher{raw}
		byTopic[topic] = pub
		return pub
	}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
