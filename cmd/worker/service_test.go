package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type blockingConsumer struct {
	started chan struct{}
}

func (c *blockingConsumer) Run(ctx context.Context) error {
	close(c.started)
	<-ctx.Done()
	return ctx.Err()
}

type failingConsumer struct {
	err error
}

func (c failingConsumer) Run(context.Context) error { return c.err }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard})
}

func TestNewServiceRequiresConsumers(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without consumers")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger(), Consumers: map[string]consumer{"x": nil}}); err == nil {
		t.Fatal("expected error for nil consumer")
	}
}

func TestRunFailsFastOnUnreadyDependency(t *testing.T) {
	bc := &blockingConsumer{started: make(chan struct{})}
	svc, err := NewService(ServiceParams{
		Logger:       testLogger(),
		Dependencies: map[string]pinger{"redis": stubPinger{err: errors.New("refused")}},
		Consumers:    map[string]consumer{"receipts": bc},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected readiness error")
	}
	select {
	case <-bc.started:
		t.Fatal("consumer must not start when a dependency is down")
	default:
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	bc := &blockingConsumer{started: make(chan struct{})}
	svc, err := NewService(ServiceParams{
		Logger:       testLogger(),
		Dependencies: map[string]pinger{"database": stubPinger{}},
		Consumers:    map[string]consumer{"receipts": bc},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-bc.started:
	case <-time.After(time.Second):
		t.Fatal("consumer did not start")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunSurfacesConsumerFailure(t *testing.T) {
	sibling := &blockingConsumer{started: make(chan struct{})}
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Consumers: map[string]consumer{
			"receipts": failingConsumer{err: errors.New("subscription deleted")},
			"sibling":  sibling,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected consumer error")
	}
}
