package cron

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultInterval = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type jobMetrics interface {
	ObserveDuration(job string, duration time.Duration)
	IncSuccess(job string)
	IncFailure(job string)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  jobMetrics
	Interval time.Duration
}

// Service runs the registered maintenance jobs once per interval while
// holding a distributed lock, so only one replica does the work.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  jobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Lock == nil:
		return nil, errors.New("lock required")
	}
	s := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return s, nil
}

// Run fires a cycle at start and then on every tick until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job in registration order. Job failures are collected
// rather than short-circuiting, and a replica that loses the lock race
// skips the cycle without error.
func (s *Service) RunOnce(ctx context.Context) (err error) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !acquired {
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			err = multierr.Append(err, fmt.Errorf("lock release: %w", relErr))
		}
	}()

	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			return multierr.Append(err, ctx.Err())
		}
		err = multierr.Append(err, s.runJob(ctx, job))
	}
	return err
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	ctx = s.logg.WithField(ctx, "job", name)

	start := time.Now()
	err := safeRun(ctx, job)
	elapsed := time.Since(start)
	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())

	if s.metrics != nil {
		s.metrics.ObserveDuration(name, elapsed)
		if err != nil {
			s.metrics.IncFailure(name)
		} else {
			s.metrics.IncSuccess(name)
		}
	}
	if err != nil {
		s.logg.Error(ctx, "cron.job_failed", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logg.Info(ctx, "cron.job_completed")
	return nil
}

// safeRun turns a panicking job into an error so the remaining jobs still run.
func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return job.Run(ctx)
}
