package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

type fakeDistributor struct {
	result *distribution.Result
	err    error
	calls  int
}

func (f *fakeDistributor) Distribute(ctx context.Context) (*distribution.Result, error) {
	f.calls++
	return f.result, f.err
}

func TestDistributionJobRunsOnePass(t *testing.T) {
	dist := &fakeDistributor{result: &distribution.Result{Success: true, Distributed: 4}}
	job, err := NewDistributionJob(dist, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewDistributionJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dist.calls != 1 {
		t.Fatalf("expected one pass, got %d", dist.calls)
	}
}

func TestDistributionJobToleratesSkippedWindow(t *testing.T) {
	dist := &fakeDistributor{result: &distribution.Result{Success: true, Skipped: true}}
	job, _ := NewDistributionJob(dist, logger.New(logger.Options{ServiceName: "test"}))
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestDistributionJobPropagatesErrors(t *testing.T) {
	dist := &fakeDistributor{err: errors.New("db gone")}
	job, _ := NewDistributionJob(dist, logger.New(logger.Options{ServiceName: "test"}))
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
