package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

const defaultPresenceRetention = 24 * time.Hour

// presencePruner is the slice of the presence repository the job needs.
type presencePruner interface {
	DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PresenceCleanupJob prunes heartbeat rows that went stale long ago.
type PresenceCleanupJob struct {
	presence  presencePruner
	logg      *logger.Logger
	retention time.Duration
	now       func() time.Time
}

// NewPresenceCleanupJob builds the cleanup job.
func NewPresenceCleanupJob(presence presencePruner, logg *logger.Logger, retention time.Duration, now func() time.Time) (*PresenceCleanupJob, error) {
	if presence == nil {
		return nil, errors.New("presence repository required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if retention <= 0 {
		retention = defaultPresenceRetention
	}
	if now == nil {
		now = time.Now
	}
	return &PresenceCleanupJob{presence: presence, logg: logg, retention: retention, now: now}, nil
}

// Name implements Job.
func (j *PresenceCleanupJob) Name() string { return "presence_cleanup" }

// Run implements Job.
func (j *PresenceCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	deleted, err := j.presence.DeleteStaleBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning stale presence: %w", err)
	}
	if deleted > 0 {
		j.logg.Info(ctx, fmt.Sprintf("pruned %d stale presence rows", deleted))
	}
	return nil
}
