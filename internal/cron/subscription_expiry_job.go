package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/skilledlink/skilledlink-backend/pkg/logger"
)

type subscriptionExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionExpiryJobParams configure the premium expiry sweep.
type SubscriptionExpiryJobParams struct {
	Logger        *logger.Logger
	Subscriptions subscriptionExpirer
}

// NewSubscriptionExpiryJob closes out premium subscriptions whose paid period
// has lapsed, demoting cancelled plans and expiring the rest.
func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscriptions service required")
	}
	return &subscriptionExpiryJob{
		logg: params.Logger,
		subs: params.Subscriptions,
		now:  time.Now,
	}, nil
}

type subscriptionExpiryJob struct {
	logg *logger.Logger
	subs subscriptionExpirer
	now  func() time.Time
}

func (j *subscriptionExpiryJob) Name() string { return "subscription-expiry" }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	affected, err := j.subs.ExpireDue(ctx, now)
	if err != nil {
		return fmt.Errorf("subscription expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":         now,
		"rows_affected": affected,
	})
	j.logg.Info(logCtx, "subscription expiry sweep complete")
	return nil
}
