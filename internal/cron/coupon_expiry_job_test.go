package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type fakeCouponExpirer struct {
	calls int
	n     int64
	err   error
}

func (f *fakeCouponExpirer) DeactivateExpired(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

func TestCouponExpiryJob(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	expirer := &fakeCouponExpirer{n: 3}
	job, err := NewCouponExpiryJob(logg, expirer)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != "coupon-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if expirer.calls != 1 {
		t.Fatalf("expected one call, got %d", expirer.calls)
	}

	expirer.err = errors.New("db down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if _, err := NewCouponExpiryJob(logg, nil); err == nil {
		t.Fatal("expected constructor error")
	}
}
