package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultOutboxRetentionDays = 30

// OutboxRetentionJobParams configure the published-event cleanup.
type OutboxRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    outboxRetentionRepo
	RetentionDays int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob deletes published outbox rows older than the retention window.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = defaultOutboxRetentionDays
	}
	return &outboxRetentionJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		days: days,
		now:  time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg *logger.Logger
	db   txRunner
	repo outboxRetentionRepo
	days int
	now  func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = j.repo.DeletePublishedBefore(ctx, tx, cutoff)
		return err
	})
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "published outbox events pruned")
	return nil
}
