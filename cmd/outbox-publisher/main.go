package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/internal/bootstrap"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

func main() {
	ctx, rt, stop := bootstrap.Start("outbox-publisher")
	defer stop()
	defer rt.Close()
	cfg, logg := rt.Config, rt.Logger
	ctx = logg.WithField(ctx, "topic", cfg.PubSub.OrdersTopic)

	dbClient := rt.Database(ctx)
	pubsubClient := rt.PubSub(ctx)

	events, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		rt.Fatal(ctx, "failed to build event registry", err)
	}
	promRegistry := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		Registry:      events,
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Metrics:       metrics.NewOutboxMetrics(promRegistry),
	})
	if err != nil {
		rt.Fatal(ctx, "failed to create outbox publisher", err)
	}

	go metrics.Serve(ctx, cfg.Service.MetricsAddr, promRegistry, logg)
	logg.Info(ctx, "starting outbox publisher")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.Fatal(ctx, "outbox publisher stopped unexpectedly", err)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}
