package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type couponExpirer interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// NewCouponExpiryJob switches off coupons whose expiry has passed.
func NewCouponExpiryJob(logg *logger.Logger, coupons couponExpirer) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	return &couponExpiryJob{logg: logg, coupons: coupons}, nil
}

type couponExpiryJob struct {
	logg    *logger.Logger
	coupons couponExpirer
}

func (j *couponExpiryJob) Name() string { return "coupon-expiry" }

func (j *couponExpiryJob) Run(ctx context.Context) error {
	n, err := j.coupons.DeactivateExpired(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "coupons_deactivated", n), "expired coupons deactivated")
	return nil
}
