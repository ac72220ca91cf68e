package main

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/bootstrap"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/receipts"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/idempotency"
)

func main() {
	ctx, rt, stop := bootstrap.Start("worker")
	defer stop()
	defer rt.Close()
	cfg, logg := rt.Config, rt.Logger
	ctx = logg.WithField(ctx, "subscription", cfg.PubSub.OrdersSubscription)

	dbClient := rt.Database(ctx)
	redisClient := rt.Redis(ctx)
	pubsubClient := rt.PubSub(ctx)

	claims, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		rt.Fatal(ctx, "failed to create idempotency manager", err)
	}
	receiptConsumer, err := receipts.NewConsumer(
		pubsubClient.OrdersSubscription(),
		claims,
		orders.NewRepository(dbClient.DB()),
		receipts.PathRenderer{},
		logg,
	)
	if err != nil {
		rt.Fatal(ctx, "failed to create receipt consumer", err)
	}

	service, err := NewService(ServiceParams{
		Logger: logg,
		Dependencies: map[string]pinger{
			"database": dbClient,
			"redis":    redisClient,
			"pubsub":   pubsubClient,
		},
		Consumers: map[string]consumer{
			"order-receipts": receiptConsumer,
		},
	})
	if err != nil {
		rt.Fatal(ctx, "failed to create worker", err)
	}

	logg.Info(ctx, "starting worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.Fatal(ctx, "worker stopped unexpectedly", err)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}
