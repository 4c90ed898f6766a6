package distribution

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougajs-sys/easyflows-backend/pkg/config"
	"github.com/ougajs-sys/easyflows-backend/pkg/db/models"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
	"github.com/ougajs-sys/easyflows-backend/pkg/pagination"
)

type fakeOrders struct {
	pending    []models.Order
	assigned   map[uuid.UUID]uuid.UUID // order -> agent
	failOrders map[uuid.UUID]bool
	fetchErr   error
}

func newFakeOrders(n int, base time.Time) *fakeOrders {
	f := &fakeOrders{assigned: map[uuid.UUID]uuid.UUID{}, failOrders: map[uuid.UUID]bool{}}
	for i := 0; i < n; i++ {
		f.pending = append(f.pending, models.Order{
			ID:        uuid.New(),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return f
}

func (f *fakeOrders) FindUnassignedPending(ctx context.Context) ([]models.Order, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.pending, nil
}

func (f *fakeOrders) UpdateAssignee(ctx context.Context, orderID, agentID uuid.UUID, assignedAt time.Time) error {
	if f.failOrders[orderID] {
		return fmt.Errorf("write refused")
	}
	f.assigned[orderID] = agentID
	return nil
}

type fakePresence struct {
	online []uuid.UUID
	err    error
}

func (f *fakePresence) OnlineCallers(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	return f.online, f.err
}

type fakeScores struct {
	scores map[uuid.UUID]int
}

func (f *fakeScores) ScoresFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return f.scores, nil
}

type fakeRuns struct {
	recorded []*models.DistributionRun
	err      error
}

func (f *fakeRuns) RecordRun(ctx context.Context, run *models.DistributionRun) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, run)
	return nil
}

func (f *fakeRuns) FindRun(ctx context.Context, id uuid.UUID) (*models.DistributionRun, error) {
	return nil, nil
}

func (f *fakeRuns) ListRuns(ctx context.Context, params pagination.Params) (*RunList, error) {
	return &RunList{}, nil
}

type fakeNotifier struct {
	notified map[uuid.UUID]int
}

func (f *fakeNotifier) NotifyAssignments(ctx context.Context, agentID uuid.UUID, count int) {
	if f.notified == nil {
		f.notified = map[uuid.UUID]int{}
	}
	f.notified[agentID] = count
}

func insideWindow() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	}
}

func newTestService(t *testing.T, orders *fakeOrders, presence *fakePresence, scores *fakeScores, runs *fakeRuns, notifier Notifier, now func() time.Time) *Service {
	t.Helper()
	svc, err := NewService(Params{
		Orders:   orders,
		Presence: presence,
		Scores:   scores,
		Runs:     runs,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config: config.DistributionConfig{
			WindowStart:        "09:00",
			WindowEnd:          "21:30",
			FreshnessThreshold: 5 * time.Minute,
		},
		Now: now,
	})
	require.NoError(t, err)
	return svc
}

func TestDistributeSplitsEvenlyWithRemainderToTopScorer(t *testing.T) {
	agentA, agentB, agentC := uuid.New(), uuid.New(), uuid.New()
	orders := newFakeOrders(10, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	presence := &fakePresence{online: []uuid.UUID{agentB, agentC, agentA}}
	scores := &fakeScores{scores: map[uuid.UUID]int{agentA: 50, agentB: 30, agentC: 10}}
	runs := &fakeRuns{}
	notifier := &fakeNotifier{}
	svc := newTestService(t, orders, presence, scores, runs, notifier, insideWindow())

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Skipped)
	assert.Equal(t, 10, res.Distributed)
	assert.Equal(t, 3, res.OnlineCallers)
	assert.Equal(t, 3, res.OrdersPerCaller)
	assert.Equal(t, 1, res.Remainder)
	require.NotNil(t, res.TopPerformer)
	assert.Equal(t, agentA, *res.TopPerformer)
	assert.Equal(t, 4, res.SummaryByCaller[agentA.String()])
	assert.Equal(t, 3, res.SummaryByCaller[agentB.String()])
	assert.Equal(t, 3, res.SummaryByCaller[agentC.String()])

	counts := map[uuid.UUID]int{}
	for _, agent := range orders.assigned {
		counts[agent]++
	}
	assert.Equal(t, 4, counts[agentA])
	assert.Equal(t, 3, counts[agentB])
	assert.Equal(t, 3, counts[agentC])

	assert.Equal(t, 4, notifier.notified[agentA])
	assert.Equal(t, 3, notifier.notified[agentB])
}

func TestDistributeTopScorerGetsOldestOrdersFirst(t *testing.T) {
	agentA, agentB := uuid.New(), uuid.New()
	orders := newFakeOrders(3, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	presence := &fakePresence{online: []uuid.UUID{agentB, agentA}}
	scores := &fakeScores{scores: map[uuid.UUID]int{agentA: 100, agentB: 5}}
	svc := newTestService(t, orders, presence, scores, &fakeRuns{}, nil, insideWindow())

	_, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	// Top scorer is first in line, so the oldest orders land with them.
	assert.Equal(t, agentA, orders.assigned[orders.pending[0].ID])
	assert.Equal(t, agentA, orders.assigned[orders.pending[1].ID])
	assert.Equal(t, agentB, orders.assigned[orders.pending[2].ID])
}

func TestDistributeSkipsOutsideWindow(t *testing.T) {
	orders := newFakeOrders(5, time.Now())
	presence := &fakePresence{online: []uuid.UUID{uuid.New()}}
	runs := &fakeRuns{}
	early := func() time.Time {
		return time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	}
	svc := newTestService(t, orders, presence, &fakeScores{}, runs, nil, early)

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Equal(t, 0, res.Distributed)
	assert.Empty(t, orders.assigned)
	assert.Empty(t, runs.recorded)
}

func TestDistributeWindowBoundariesAreInclusive(t *testing.T) {
	for _, clock := range []time.Time{
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC),
	} {
		orders := newFakeOrders(1, time.Now())
		presence := &fakePresence{online: []uuid.UUID{uuid.New()}}
		svc := newTestService(t, orders, presence, &fakeScores{}, &fakeRuns{}, nil, func() time.Time { return clock })

		res, err := svc.Distribute(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Skipped, "clock %s", clock)
		assert.Equal(t, 1, res.Distributed, "clock %s", clock)
	}
}

func TestDistributeNoAgentsIsZeroResultNotError(t *testing.T) {
	orders := newFakeOrders(5, time.Now())
	runs := &fakeRuns{}
	svc := newTestService(t, orders, &fakePresence{}, &fakeScores{}, runs, nil, insideWindow())

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Distributed)
	assert.Equal(t, 0, res.OnlineCallers)
	assert.Empty(t, orders.assigned)
	assert.Empty(t, runs.recorded)
}

func TestDistributeNoOrdersIsZeroResultNotError(t *testing.T) {
	orders := newFakeOrders(0, time.Now())
	presence := &fakePresence{online: []uuid.UUID{uuid.New()}}
	svc := newTestService(t, orders, presence, &fakeScores{}, &fakeRuns{}, nil, insideWindow())

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Distributed)
	assert.Equal(t, 1, res.OnlineCallers)
}

func TestDistributeFetchFailureAborts(t *testing.T) {
	orders := newFakeOrders(5, time.Now())
	orders.fetchErr = fmt.Errorf("db gone")
	presence := &fakePresence{online: []uuid.UUID{uuid.New()}}
	svc := newTestService(t, orders, presence, &fakeScores{}, &fakeRuns{}, nil, insideWindow())

	_, err := svc.Distribute(context.Background())
	require.Error(t, err)
}

func TestDistributeCountsFailedWritesAndContinues(t *testing.T) {
	agentA, agentB := uuid.New(), uuid.New()
	orders := newFakeOrders(4, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	orders.failOrders[orders.pending[1].ID] = true
	presence := &fakePresence{online: []uuid.UUID{agentA, agentB}}
	scores := &fakeScores{scores: map[uuid.UUID]int{agentA: 10, agentB: 5}}
	runs := &fakeRuns{}
	svc := newTestService(t, orders, presence, scores, runs, nil, insideWindow())

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Distributed)
	assert.Equal(t, 1, res.FailedWrites)
	require.Len(t, runs.recorded, 1)
	assert.Equal(t, 3, runs.recorded[0].Distributed)
	assert.Equal(t, 1, runs.recorded[0].FailedWrites)
	assert.Len(t, runs.recorded[0].Assignments, 3)
}

func TestDistributeRecordsAuditRun(t *testing.T) {
	agent := uuid.New()
	orders := newFakeOrders(2, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	presence := &fakePresence{online: []uuid.UUID{agent}}
	runs := &fakeRuns{}
	svc := newTestService(t, orders, presence, &fakeScores{}, runs, nil, insideWindow())

	_, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	require.Len(t, runs.recorded, 1)
	run := runs.recorded[0]
	assert.Equal(t, 2, run.Distributed)
	assert.Equal(t, 1, run.OnlineCallers)
	require.NotNil(t, run.TopPerformerID)
	assert.Equal(t, agent, *run.TopPerformerID)
	assert.Len(t, run.Assignments, 2)
	assert.Equal(t, 2, run.SummaryByCaller[agent.String()])
}

func TestDistributeStableTieKeepsPresenceOrder(t *testing.T) {
	agentA, agentB := uuid.New(), uuid.New()
	orders := newFakeOrders(3, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	presence := &fakePresence{online: []uuid.UUID{agentA, agentB}}
	scores := &fakeScores{scores: map[uuid.UUID]int{agentA: 10, agentB: 10}}
	svc := newTestService(t, orders, presence, scores, &fakeRuns{}, nil, insideWindow())

	res, err := svc.Distribute(context.Background())
	require.NoError(t, err)

	// Equal scores: the agent listed first by presence keeps the remainder.
	require.NotNil(t, res.TopPerformer)
	assert.Equal(t, agentA, *res.TopPerformer)
	assert.Equal(t, 2, res.SummaryByCaller[agentA.String()])
	assert.Equal(t, 1, res.SummaryByCaller[agentB.String()])
}
