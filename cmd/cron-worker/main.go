package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/internal/bootstrap"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/cron"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	ctx, rt, stop := bootstrap.Start("cron-worker")
	defer stop()
	defer rt.Close()
	cfg, logg := rt.Config, rt.Logger
	ctx = logg.WithField(ctx, "interval", cfg.Cron.Interval.String())

	dbClient := rt.Database(ctx)
	redisClient := rt.Redis(ctx)

	jobs, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		rt.Fatal(ctx, "failed to register cron jobs", err)
	}
	lock, err := cron.NewRedisLock(redisClient, lockKey(redisClient, cfg.App.Env), cron.LockTTLFor(cfg.Cron.Interval))
	if err != nil {
		rt.Fatal(ctx, "failed to create cron lock", err)
	}

	promRegistry := prometheus.NewRegistry()
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(promRegistry),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		rt.Fatal(ctx, "failed to create cron service", err)
	}

	go metrics.Serve(ctx, cfg.Service.MetricsAddr, promRegistry, logg)
	logg.Info(logg.WithField(ctx, "jobs", jobs.Names()), "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.Fatal(ctx, "cron worker stopped unexpectedly", err)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	couponService, err := coupons.NewService(coupons.NewRepository(repo.NewBase(dbClient.DB())))
	if err != nil {
		return nil, err
	}
	expiry, err := cron.NewCouponExpiryJob(logg, couponService)
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	if err := registry.Register(retention, expiry); err != nil {
		return nil, err
	}
	return registry, nil
}

// lockKey scopes the cycle lock per environment.
func lockKey(client *redis.Client, env string) string {
	if env == "" {
		env = "local"
	}
	return client.LockKey(fmt.Sprintf("cron:%s", env))
}
