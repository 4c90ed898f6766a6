package distribution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// OrderSource is the slice of the orders repository the distributor needs.
type OrderSource interface {
	FindUnassignedPending(ctx context.Context) ([]models.Order, error)
	UpdateAssignee(ctx context.Context, orderID, agentID uuid.UUID, assignedAt time.Time) error
}

// PresenceSource reports which call agents are currently online.
type PresenceSource interface {
	OnlineCallers(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// ScoreSource returns cumulative performance points per agent.
type ScoreSource interface {
	ScoresFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// Notifier tells an agent how many orders they just received. Failures are
// the notifier's problem; distribution never depends on delivery.
type Notifier interface {
	NotifyAssignments(ctx context.Context, agentID uuid.UUID, count int)
}

// Result summarizes one distributor invocation.
type Result struct {
	Success         bool           `json:"success"`
	Skipped         bool           `json:"skipped"`
	Message         string         `json:"message"`
	Distributed     int            `json:"distributed"`
	OnlineCallers   int            `json:"onlineCallers"`
	OrdersPerCaller int            `json:"ordersPerCaller"`
	Remainder       int            `json:"remainder"`
	TopPerformer    *uuid.UUID     `json:"topPerformer,omitempty"`
	SummaryByCaller map[string]int `json:"summaryByCaller"`
	FailedWrites    int            `json:"failedWrites,omitempty"`
}

// Params configures the distributor.
type Params struct {
	Orders   OrderSource
	Presence PresenceSource
	Scores   ScoreSource
	Runs     Repository
	Notifier Notifier
	Logger   *logger.Logger
	Config   config.DistributionConfig
	Now      func() time.Time
}

// Service assigns unassigned pending orders to online call agents.
type Service struct {
	orders    OrderSource
	presence  PresenceSource
	scores    ScoreSource
	runs      Repository
	notifier  Notifier
	logger    *logger.Logger
	freshness time.Duration
	winStart  int
	winEnd    int
	now       func() time.Time
}

// NewService builds the distributor. The time window comes pre-validated
// from config loading.
func NewService(params Params) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("distribution.NewService: nil order source")
	}
	if params.Presence == nil {
		return nil, fmt.Errorf("distribution.NewService: nil presence source")
	}
	if params.Scores == nil {
		return nil, fmt.Errorf("distribution.NewService: nil score source")
	}
	if params.Runs == nil {
		return nil, fmt.Errorf("distribution.NewService: nil runs repository")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("distribution.NewService: nil logger")
	}
	start, end, err := params.Config.Window()
	if err != nil {
		return nil, err
	}
	freshness := params.Config.FreshnessThreshold
	if freshness <= 0 {
		freshness = 5 * time.Minute
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Service{
		orders:    params.Orders,
		presence:  params.Presence,
		scores:    params.Scores,
		runs:      params.Runs,
		notifier:  params.Notifier,
		logger:    params.Logger,
		freshness: freshness,
		winStart:  start,
		winEnd:    end,
		now:       params.Now,
	}, nil
}

// Distribute runs one distribution pass. Outside the configured window it
// reports skipped and performs no reads or writes.
func (s *Service) Distribute(ctx context.Context) (*Result, error) {
	now := s.now()
	minute := now.Hour()*60 + now.Minute()
	if minute < s.winStart || minute > s.winEnd {
		return &Result{
			Success:         true,
			Skipped:         true,
			Message:         "outside distribution window",
			SummaryByCaller: map[string]int{},
		}, nil
	}

	agentIDs, err := s.presence.OnlineCallers(ctx, now.Add(-s.freshness))
	if err != nil {
		return nil, fmt.Errorf("loading online agents: %w", err)
	}
	orders, err := s.orders.FindUnassignedPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pending orders: %w", err)
	}

	if len(agentIDs) == 0 || len(orders) == 0 {
		return &Result{
			Success:         true,
			Message:         fmt.Sprintf("nothing to distribute: %d orders, %d online agents", len(orders), len(agentIDs)),
			OnlineCallers:   len(agentIDs),
			SummaryByCaller: map[string]int{},
		}, nil
	}

	scores, err := s.scores.ScoresFor(ctx, agentIDs)
	if err != nil {
		return nil, fmt.Errorf("loading agent scores: %w", err)
	}
	// Highest score first; ties keep presence order.
	sort.SliceStable(agentIDs, func(i, j int) bool {
		return scores[agentIDs[i]] > scores[agentIDs[j]]
	})
	top := agentIDs[0]

	base := len(orders) / len(agentIDs)
	remainder := len(orders) % len(agentIDs)

	shares := make(map[uuid.UUID]int, len(agentIDs))
	for _, id := range agentIDs {
		shares[id] = base
	}
	shares[top] += remainder

	summary := make(map[string]int, len(agentIDs))
	var assignments []models.DistributionAssignment
	distributed := 0
	failed := 0

	// Orders arrive oldest first. Each write stands alone: a failure is
	// counted and the pass moves on, it is not rolled back.
	cursor := 0
	for _, agentID := range agentIDs {
		for n := 0; n < shares[agentID] && cursor < len(orders); n++ {
			order := orders[cursor]
			cursor++
			if err := s.orders.UpdateAssignee(ctx, order.ID, agentID, now); err != nil {
				s.logger.Error(ctx, fmt.Sprintf("distribution: assigning order %s failed", order.ID), err)
				failed++
				continue
			}
			distributed++
			summary[agentID.String()]++
			assignments = append(assignments, models.DistributionAssignment{
				OrderID: order.ID,
				AgentID: agentID,
			})
		}
	}

	run := &models.DistributionRun{
		Distributed:     distributed,
		OnlineCallers:   len(agentIDs),
		OrdersPerCaller: base,
		Remainder:       remainder,
		TopPerformerID:  &top,
		SummaryByCaller: summary,
		FailedWrites:    failed,
		RanAt:           now,
		Assignments:     assignments,
	}
	if err := s.runs.RecordRun(ctx, run); err != nil {
		s.logger.Error(ctx, "distribution: recording audit run failed", err)
	}

	if s.notifier != nil {
		for _, agentID := range agentIDs {
			if count := summary[agentID.String()]; count > 0 {
				s.notifier.NotifyAssignments(ctx, agentID, count)
			}
		}
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"distributed":    distributed,
		"online_callers": len(agentIDs),
		"per_caller":     base,
		"remainder":      remainder,
		"failed_writes":  failed,
	})
	s.logger.Info(ctx, "distribution pass finished")

	return &Result{
		Success:         true,
		Message:         fmt.Sprintf("distributed %d orders to %d agents", distributed, len(agentIDs)),
		Distributed:     distributed,
		OnlineCallers:   len(agentIDs),
		OrdersPerCaller: base,
		Remainder:       remainder,
		TopPerformer:    &top,
		SummaryByCaller: summary,
		FailedWrites:    failed,
	}, nil
}
