package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/presenters"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/loyalty"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type couponValidator interface {
	Validate(ctx context.Context, code string) (*coupons.CouponDTO, error)
}

type loyaltyReader interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*loyalty.SummaryDTO, error)
}

// LoyaltySummary returns the caller's points balance and history.
func LoyaltySummary(svc loyaltyReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loyalty service unavailable"))
			return
		}
		userID, _, err := middleware.RequireCaller(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.GetSummary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type loyaltySettingsRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminLoyaltySettings reads the store-wide loyalty flag.
func AdminLoyaltySettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		dto, err := svc.GetLoyalty(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminUpdateLoyaltySettings switches loyalty accrual on or off.
func AdminUpdateLoyaltySettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		var body loyaltySettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.SetLoyaltyActive(r.Context(), *body.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "loyalty_active", dto.Active), "loyalty setting updated")
		}
		responses.WriteSuccess(w, dto)
	}
}

// ActiveTheme returns the storefront theme currently in use.
func ActiveTheme(svc settings.Service, images presenters.ImageURLs, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		theme, err := svc.ActiveTheme(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, images.Theme(*theme))
	}
}

// AdminActivateTheme makes one theme active and every other inactive.
func AdminActivateTheme(svc settings.Service, images presenters.ImageURLs, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		themeID, err := validators.ParseUUIDParam(r, "themeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		theme, err := svc.ActivateTheme(r.Context(), themeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, images.Theme(*theme))
	}
}
