package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/presenters"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/bootstrap"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/loyalty"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, rt, stop := bootstrap.Start("api")
	defer stop()
	defer rt.Close()
	cfg, logg := rt.Config, rt.Logger

	dbClient := rt.Database(ctx)
	redisClient := rt.Redis(ctx)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		rt.Fatal(ctx, "failed to create session manager", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	params, err := buildRouterParams(cfg, logg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		rt.Fatal(ctx, "failed to wire services", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx = logg.WithField(ctx, "addr", server.Addr)
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			rt.Fatal(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildRouterParams(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	registry *prometheus.Registry,
) (routes.Params, error) {
	gormDB := dbClient.DB()

	usersRepo := users.NewRepository(gormDB)
	usersService, err := users.NewService(users.ServiceParams{
		Repo:           usersRepo,
		Tx:             dbClient,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Params{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Params{}, err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Users: usersService,
		Auth:  authService,
	})
	if err != nil {
		return routes.Params{}, err
	}
	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		Tx:             dbClient,
		Users:          usersRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Params{}, err
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(gormDB))
	if err != nil {
		return routes.Params{}, err
	}
	base := repo.NewBase(gormDB)
	catalogService, err := catalog.NewService(catalog.NewRepository(base), pricingService)
	if err != nil {
		return routes.Params{}, err
	}
	couponsService, err := coupons.NewService(coupons.NewRepository(base))
	if err != nil {
		return routes.Params{}, err
	}

	settingsService, err := settings.NewService(settings.ServiceParams{
		Repo:   settings.NewRepository(gormDB),
		Tx:     dbClient,
		Logger: logg,
	})
	if err != nil {
		return routes.Params{}, err
	}
	loyaltyService, err := loyalty.NewService(loyalty.ServiceParams{
		Repo:     loyalty.NewRepository(gormDB),
		Settings: settingsService,
		Logger:   logg,
	})
	if err != nil {
		return routes.Params{}, err
	}

	ledger := inventory.NewLedger()
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cart.NewRepository(gormDB),
		Tx:      dbClient,
		Ledger:  ledger,
		Pricing: pricingService,
		Logger:  logg,
	})
	if err != nil {
		return routes.Params{}, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(gormDB),
		Tx:      dbClient,
		Outbox:  outbox.NewService(outbox.NewRepository(gormDB), logg),
		Pricing: pricingService,
		Ledger:  ledger,
		Loyalty: loyaltyService,
		Users:   usersService,
		Cart:    cartService,
		Metrics: metrics.NewOrderMetrics(registry),
		Logger:  logg,
		Config:  cfg.Orders,
	})
	if err != nil {
		return routes.Params{}, err
	}

	return routes.Params{
		Config: cfg,
		Logger: logg,
		Health: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Store:         redisClient,
		Sessions:      sessionManager,
		Images:        presenters.NewImageURLs(cfg.Media.PublicBaseURL),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:          authService,
		Register:      registerService,
		AdminRegister: adminRegisterService,
		Catalog:       catalogService,
		Pricing:       pricingService,
		Coupons:       couponsService,
		Loyalty:       loyaltyService,
		Settings:      settingsService,
		Cart:          cartService,
		Orders:        ordersService,
	}, nil
}
