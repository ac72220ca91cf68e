package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// CouponDTO is the public view of a valid coupon.
type CouponDTO struct {
	Code      string          `json:"code"`
	Discount  decimal.Decimal `json:"discount"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Service validates coupon codes. Coupons are informational and never applied to order totals.
type Service interface {
	Validate(ctx context.Context, code string) (*CouponDTO, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a coupon service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string) (*CouponDTO, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required").
			WithDetails(map[string]string{"code": "is required"})
	}
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}
	if !coupon.IsActive || (coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(s.now())) {
		// expired and disabled codes look the same as unknown ones
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return &CouponDTO{Code: coupon.Code, Discount: coupon.Discount, ExpiresAt: coupon.ExpiresAt}, nil
}

func (s *service) DeactivateExpired(ctx context.Context) (int64, error) {
	return s.repo.DeactivateExpired(ctx, s.now().UTC())
}
