package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

type fakePresencePruner struct {
	lastCutoff time.Time
	deleted    int64
	err        error
	called     int
}

func (f *fakePresencePruner) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestPresenceCleanupJobPrunesWithRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	pruner := &fakePresencePruner{deleted: 7}
	job, err := NewPresenceCleanupJob(
		pruner,
		logger.New(logger.Options{ServiceName: "test"}),
		24*time.Hour,
		func() time.Time { return now },
	)
	if err != nil {
		t.Fatalf("NewPresenceCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expected := now.Add(-24 * time.Hour)
	if !pruner.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, pruner.lastCutoff)
	}
	if pruner.called != 1 {
		t.Fatalf("expected pruner called once, got %d", pruner.called)
	}
}

func TestPresenceCleanupJobPropagatesErrors(t *testing.T) {
	pruner := &fakePresencePruner{err: errors.New("boom")}
	job, err := NewPresenceCleanupJob(pruner, logger.New(logger.Options{ServiceName: "test"}), 0, nil)
	if err != nil {
		t.Fatalf("NewPresenceCleanupJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
