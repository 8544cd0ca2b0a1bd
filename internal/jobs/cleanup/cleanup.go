package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job prunes notifications that were read long enough ago that nobody
// will scroll back to them. It runs on a fixed interval for the whole
// lifetime of the process.
type Job struct {
	pruner    readNotificationPruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type readNotificationPruner interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewNotificationCleanupJob(pruner readNotificationPruner, retention, interval time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.pruner == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	rows, err := j.pruner.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune read notifications: %w", err)
	}
	if rows > 0 {
		j.logger.Info("pruned read notifications", zap.Int64("deleted", rows))
	}
	return nil
}

// Start blocks until ctx is cancelled, running the job once up front
// and then on every tick.
func (j *Job) Start(ctx context.Context) error {
	if err := j.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				return err
			}
		}
	}
}
