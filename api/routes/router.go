package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/presenters"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/loyalty"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// requestStore backs idempotency records and auth throttling.
type requestStore interface {
	pkgredis.IdempotencyStore
	middleware.RateLimiter
}

// Params groups everything the HTTP surface is built from. Nil services
// answer with an internal error instead of panicking.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	// Health names each readiness dependency.
	Health map[string]controllers.Pinger
	// Store may be nil, which disables idempotency and rate limiting.
	Store    requestStore
	Sessions session.AccessSessionChecker
	Images   presenters.ImageURLs
	Metrics  http.Handler

	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Catalog       catalog.Service
	Pricing       pricing.Service
	Coupons       coupons.Service
	Loyalty       loyalty.Service
	Settings      settings.Service
	Cart          cart.Service
	Orders        orders.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	var store pkgredis.IdempotencyStore
	var limiter middleware.RateLimiter
	if p.Store != nil {
		store, limiter = p.Store, p.Store
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	authRequired := middleware.Auth(cfg.JWT, p.Sessions, logg)
	authOptional := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)
	// Idempotency matches on the full route pattern, so it is attached per
	// route with With rather than per group.
	idempotent := middleware.Idempotency(store, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Health))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1", func(r chi.Router) {
			r.Get("/catalog/items", controllers.CatalogList(p.Catalog, p.Images, logg))
			r.Get("/catalog/items/{itemId}", controllers.CatalogItem(p.Catalog, p.Images, logg))
			r.Get("/catalog/items/{itemId}/price", controllers.CatalogItemPrice(p.Pricing, logg))
			r.Post("/coupons/validate", controllers.CouponValidate(p.Coupons, logg))
			r.Get("/themes/active", controllers.ActiveTheme(p.Settings, p.Images, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg), idempotent).Post("/register", controllers.AuthRegister(p.Register, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(p.AdminRegister, p.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AdminAuthLogin(p.Auth, logg))
	})

	// Guests may order without an account; a token, when sent, must be valid.
	r.With(authOptional, idempotent).Post("/api/v1/orders", ordercontrollers.Place(p.Orders, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authRequired)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/mine", ordercontrollers.ListMine(p.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(p.Orders, logg))
			r.Get("/{orderId}/receipt", ordercontrollers.Receipt(p.Orders, logg))
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(p.Cart, logg))
			r.Delete("/", cartcontrollers.Clear(p.Cart, logg))
			r.With(idempotent).Post("/lines", cartcontrollers.AddLine(p.Cart, logg))
			r.Delete("/lines/{variantId}", cartcontrollers.RemoveLine(p.Cart, logg))
		})
		r.Get("/loyalty", controllers.LoyaltySummary(p.Loyalty, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authRequired)
		r.Use(middleware.RequireStaff(logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1", func(r chi.Router) {
			r.Get("/orders", ordercontrollers.AdminList(p.Orders, logg))
			r.Get("/orders/sold", ordercontrollers.AdminSold(p.Orders, logg))
			r.Get("/reports/sales-by-seller", ordercontrollers.AdminSalesBySeller(p.Orders, logg))
			r.With(idempotent).Patch("/orders/{orderId}", ordercontrollers.AdminUpdate(p.Orders, logg))
			r.Get("/settings/loyalty", controllers.AdminLoyaltySettings(p.Settings, logg))
			r.Put("/settings/loyalty", controllers.AdminUpdateLoyaltySettings(p.Settings, logg))
			r.Post("/themes/{themeId}/activate", controllers.AdminActivateTheme(p.Settings, p.Images, logg))
		})
	})

	return r
}
