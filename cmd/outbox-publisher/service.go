package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type dispatchMetrics interface {
	IncPublished(eventType string)
	IncRetry(eventType string)
	IncDeadLettered(eventType, reason string)
}

type discardMetrics struct{}

func (discardMetrics) IncPublished(string)            {}
func (discardMetrics) IncRetry(string)                {}
func (discardMetrics) IncDeadLettered(string, string) {}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Metrics          dispatchMetrics
}

// Service relays committed outbox rows to Pub/Sub. Each batch is claimed
// inside one transaction so concurrent publishers never share a row.
type Service struct {
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	dlq              dlqRepository
	metrics          dispatchMetrics
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	var missing []string
	for _, dep := range []struct {
		name    string
		present bool
	}{
		{"config", params.Config != nil},
		{"logger", params.Logger != nil},
		{"db", params.DB != nil},
		{"pubsub", params.PubSub != nil},
		{"repository", params.Repository != nil},
		{"registry", params.Registry != nil},
		{"dlq repository", params.DLQRepository != nil},
	} {
		if !dep.present {
			missing = append(missing, dep.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("outbox publisher: missing %s", strings.Join(missing, ", "))
	}

	svc := &Service{
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		dlq:              params.DLQRepository,
		metrics:          params.Metrics,
		publisherFactory: params.PublisherFactory,
	}
	if svc.metrics == nil {
		svc.metrics = discardMetrics{}
	}
	if svc.publisherFactory == nil {
		svc.publisherFactory = cachedPublishers(params.PubSub)
	}

	cfg := params.Config.Outbox
	svc.batchSize = cmpOr(cfg.BatchSize, defaultBatchSize)
	svc.maxAttempts = cmpOr(cfg.MaxAttempts, defaultMaxAttempts)
	svc.pollInterval = time.Duration(cmpOr(cfg.PollIntervalMS, defaultPollMs)) * time.Millisecond
	return svc, nil
}

func cmpOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Run relays until ctx is canceled. Full batches are drained back to back;
// an idle table waits one poll interval and a failing one backs off.
func (s *Service) Run(ctx context.Context) error {
	if err := multierr.Combine(s.db.Ping(ctx), s.pubsub.Ping(ctx)); err != nil {
		return fmt.Errorf("outbox publisher not ready: %w", err)
	}

	wait := newPollBackoff(s.pollInterval)
	for {
		processed, err := s.processBatch(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var delay time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch_failed", err)
			delay = wait.fail()
		case processed:
			wait.reset()
			continue
		default:
			wait.reset()
			delay = wait.idle()
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// processBatch reports whether any row was claimed. A row that fails to
// publish is recorded and the batch carries on; only bookkeeping errors
// abort the transaction.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var claimed int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		claimed = len(rows)
		for _, row := range rows {
			if err := s.dispatch(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed > 0, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
