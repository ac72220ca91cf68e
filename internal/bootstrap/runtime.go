// Package bootstrap holds the startup sequence shared by every binary:
// environment, config, logger, signal handling and the shared clients.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

type closer struct {
	name  string
	close func() error
}

// Runtime owns the clients opened during startup and closes them in
// reverse order.
type Runtime struct {
	Config  *config.Config
	Logger  *logger.Logger
	closers []closer
	exit    func(int)
}

// Start loads .env and config for the named service and returns a context
// cancelled on SIGINT or SIGTERM. Config errors terminate the process.
func Start(kind string) (context.Context, *Runtime, context.CancelFunc) {
	boot := logger.New(logger.Options{ServiceName: kind})
	if err := godotenv.Load(); err != nil {
		boot.Warn(context.Background(), ".env file not found, relying on environment")
	}
	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = kind

	rt := &Runtime{
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: kind,
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
		}),
		exit: os.Exit,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = rt.Logger.WithFields(ctx, map[string]any{"env": cfg.App.Env, "serviceKind": kind})
	return ctx, rt, stop
}

// Defer registers a cleanup to run on Close.
func (r *Runtime) Defer(name string, fn func() error) {
	r.closers = append(r.closers, closer{name: name, close: fn})
}

// Close runs registered cleanups newest first and reports every failure.
func (r *Runtime) Close() error {
	var errs error
	for i := len(r.closers) - 1; i >= 0; i-- {
		c := r.closers[i]
		if err := c.close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	r.closers = nil
	if errs != nil {
		r.Logger.Error(context.Background(), "shutdown cleanup failed", errs)
	}
	return errs
}

// Fatal logs err, releases what was opened so far and exits non-zero.
func (r *Runtime) Fatal(ctx context.Context, msg string, err error) {
	r.Logger.Error(ctx, msg, err)
	_ = r.Close()
	r.exit(1)
}

// Database opens the primary database and applies dev migrations.
func (r *Runtime) Database(ctx context.Context) *db.Client {
	client, err := db.New(ctx, r.Config.DB, r.Logger)
	if err != nil {
		r.Fatal(ctx, "failed to bootstrap database", err)
		return nil
	}
	r.Defer("database", client.Close)
	if err := migrate.MaybeRunDev(ctx, r.Config, r.Logger, client); err != nil {
		r.Fatal(ctx, "failed to run dev migrations", err)
	}
	return client
}

func (r *Runtime) Redis(ctx context.Context) *redis.Client {
	client, err := redis.New(ctx, r.Config.Redis, r.Logger)
	if err != nil {
		r.Fatal(ctx, "failed to bootstrap redis", err)
		return nil
	}
	r.Defer("redis", client.Close)
	return client
}

func (r *Runtime) PubSub(ctx context.Context) *pubsub.Client {
	client, err := pubsub.NewClient(ctx, r.Config.GCP, r.Config.PubSub, r.Logger)
	if err != nil {
		r.Fatal(ctx, "failed to bootstrap pubsub", err)
		return nil
	}
	r.Defer("pubsub", client.Close)
	return client
}
