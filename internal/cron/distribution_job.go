package cron

import (
	"context"
	"errors"

	"github.com/ougajs-sys/easyflows-backend/internal/distribution"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// distributor is the slice of the distribution service the job needs.
type distributor interface {
	Distribute(ctx context.Context) (*distribution.Result, error)
}

// DistributionJob runs one order distribution pass per cron cycle.
type DistributionJob struct {
	service distributor
	logg    *logger.Logger
}

// NewDistributionJob wires the distributor into the cron registry.
func NewDistributionJob(service distributor, logg *logger.Logger) (*DistributionJob, error) {
	if service == nil {
		return nil, errors.New("distribution service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &DistributionJob{service: service, logg: logg}, nil
}

// Name implements Job.
func (j *DistributionJob) Name() string { return "order_distribution" }

// Run implements Job.
func (j *DistributionJob) Run(ctx context.Context) error {
	result, err := j.service.Distribute(ctx)
	if err != nil {
		return err
	}
	if result.Skipped {
		j.logg.Info(ctx, "distribution outside time window; skipped")
		return nil
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"distributed":    result.Distributed,
		"online_callers": result.OnlineCallers,
		"remainder":      result.Remainder,
		"failed_writes":  result.FailedWrites,
	})
	j.logg.Info(ctx, "distribution cycle done")
	return nil
}
