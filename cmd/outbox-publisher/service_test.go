package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			orderEvent(t, enums.EventOrderCreated, "event-one", 0),
			orderEvent(t, enums.EventOrderStatusChanged, "event-two", 0),
		},
	}
	pub := &fakePublisher{results: []publishResult{
		fakePublishResult{err: errors.New("transient")},
		fakePublishResult{},
	}}
	metrics := &recordingMetrics{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, metrics, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("expected first row marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("expected second row published, got %v", repo.published)
	}
	if metrics.retry != 1 || metrics.published != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestProcessBatchReportsIdleWhenEmpty(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, nil, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatal("expected empty batch to report idle")
	}
}

func TestPublishSetsRoutingAttributes(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, "attrs", 0)
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	service := newTestService(t, &fakeRepo{events: []models.OutboxEvent{event}}, pub, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, nil, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.sent))
	}
	attrs := pub.sent[0].Attributes
	if attrs["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("unexpected event_type %q", attrs["event_type"])
	}
	if attrs["aggregate_type"] != string(enums.AggregateOrder) {
		t.Fatalf("unexpected aggregate_type %q", attrs["aggregate_type"])
	}
	if attrs["aggregate_id"] != event.AggregateID.String() || attrs["event_id"] != event.ID.String() {
		t.Fatalf("unexpected ids %+v", attrs)
	}
	if !bytes.Equal(pub.sent[0].Data, event.Payload) {
		t.Fatal("payload must be forwarded untouched")
	}
}

func TestProcessBatchWritesDLQOnNonRetryable(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, "nonretryable", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlqRepo := &fakeDLQRepo{}
	metrics := &recordingMetrics{}
	reg := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	service := newTestService(t, repo, &fakePublisher{}, reg, dlqRepo, metrics, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(dlqRepo.entries) != 1 {
		t.Fatalf("expected dlq entry, got %d", len(dlqRepo.entries))
	}
	entry := dlqRepo.entries[0]
	if entry.EventID != event.ID || !bytes.Equal(entry.Payload, event.Payload) {
		t.Fatalf("dlq entry does not mirror the event: %+v", entry)
	}
	if entry.ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected error reason: %s", entry.ErrorReason)
	}
	if entry.ErrorMessage == nil || *entry.ErrorMessage != "invalid payload" {
		t.Fatalf("unexpected error message %v", entry.ErrorMessage)
	}
	if len(repo.terminal) != 1 {
		t.Fatalf("expected row marked terminal, got %d", len(repo.terminal))
	}
	if metrics.deadLettered["non_retryable"] != 1 {
		t.Fatalf("expected dead letter metric, got %+v", metrics.deadLettered)
	}
}

func TestProcessBatchWritesDLQOnMaxAttempts(t *testing.T) {
	event := orderEvent(t, enums.EventOrderStatusChanged, "max-attempts", 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakePublishResult{err: errors.New("transient")}}}
	dlqRepo := &fakeDLQRepo{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: ordersResolved()}, dlqRepo, nil, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(dlqRepo.entries) != 1 {
		t.Fatalf("expected dlq entry, got %d", len(dlqRepo.entries))
	}
	if dlqRepo.entries[0].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected error reason: %s", dlqRepo.entries[0].ErrorReason)
	}
	if len(repo.failed) != 0 {
		t.Fatal("terminal rows must not also be marked failed")
	}
}

func TestMissingPublisherIsTerminal(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, "no-topic", 0)
	dlqRepo := &fakeDLQRepo{}
	service := newTestService(t, &fakeRepo{events: []models.OutboxEvent{event}}, nil, &fakeRegistry{resolved: ordersResolved()}, dlqRepo, nil, nil)
	service.publisherFactory = func(string) publisher { return nil }

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(dlqRepo.entries) != 1 || dlqRepo.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("expected non-retryable dlq entry, got %+v", dlqRepo.entries)
	}
}

func TestPollBackoffDoublesAndCaps(t *testing.T) {
	b := newPollBackoff(500 * time.Millisecond)
	b.jitter = func(time.Duration) time.Duration { return 0 }

	assert.Equal(t, time.Second, b.fail())
	assert.Equal(t, 2*time.Second, b.fail())
	for range 5 {
		b.fail()
	}
	assert.Equal(t, maxBackoff, b.fail())

	b.reset()
	assert.Equal(t, time.Second, b.fail())
	assert.Equal(t, 500*time.Millisecond, b.idle())
}

func TestRandomJitterStaysInWindow(t *testing.T) {
	for range 100 {
		got := randomJitter(jitterWindow)
		require.GreaterOrEqual(t, got, time.Duration(0))
		require.Less(t, got, jitterWindow)
	}
	assert.Zero(t, randomJitter(0))
}

func TestNewServiceListsMissingDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Config: &config.Config{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger")
	assert.Contains(t, err.Error(), "dlq repository")
	assert.NotContains(t, err.Error(), "config")
}

func TestCachedPublishersSkipsUnknownTopics(t *testing.T) {
	factory := cachedPublishers(&fakePubSubClient{})
	assert.Nil(t, factory("orders"))
}

func TestRunFailsWhenDependenciesAreDown(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, &fakeDLQRepo{}, nil, nil)
	service.db = &fakeDB{pingErr: errors.New("db down")}
	service.pubsub = &fakePubSubClient{pingErr: errors.New("topic missing")}

	err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), "topic missing")
}

func TestNewServiceAppliesDefaults(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, &fakeDLQRepo{}, nil, &config.OutboxConfig{})
	if service.batchSize != defaultBatchSize || service.maxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected defaults batch=%d attempts=%d", service.batchSize, service.maxAttempts)
	}
	if service.pollInterval != time.Duration(defaultPollMs)*time.Millisecond {
		t.Fatalf("unexpected poll interval %v", service.pollInterval)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, reg registryResolver, dlq dlqRepository, metrics dispatchMetrics, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()
	outboxCfg := config.OutboxConfig{BatchSize: 2, PollIntervalMS: 100, MaxAttempts: 5}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	service, err := NewService(ServiceParams{
		Config:           &config.Config{Outbox: outboxCfg},
		Logger:           logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:               &fakeDB{},
		PubSub:           &fakePubSubClient{},
		Repository:       repo,
		Registry:         reg,
		PublisherFactory: func(string) publisher { return pub },
		DLQRepository:    dlq,
		Metrics:          metrics,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func orderEvent(tb testing.TB, eventType enums.OutboxEventType, eventID string, attempts int) models.OutboxEvent {
	tb.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		AttemptCount:  attempts,
		CreatedAt:     time.Now(),
	}
}

func ordersResolved() *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{Topic: "orders-topic", AggregateType: enums.AggregateOrder},
		Payload:    &payloads.OrderCreatedEvent{},
	}
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct {
	pingErr error
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct {
	pingErr error
}

func (f *fakePubSubClient) Ping(context.Context) error { return f.pingErr }

func (f *fakePubSubClient) Publisher(string) *gcppubsub.Publisher { return nil }

type fakePublisher struct {
	results []publishResult
	sent    []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.sent = append(f.sent, msg)
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	return "", f.err
}

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = event.CreatedAt
	return &resolved, f.err
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type recordingMetrics struct {
	published    int
	retry        int
	deadLettered map[string]int
}

func (m *recordingMetrics) IncPublished(string) { m.published++ }

func (m *recordingMetrics) IncRetry(string) { m.retry++ }

func (m *recordingMetrics) IncDeadLettered(_, reason string) {
	if m.deadLettered == nil {
		m.deadLettered = map[string]int{}
	}
	m.deadLettered[reason]++
}
