package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queuelens/queuelens/internal/queueing"
)

func newTestPlanner(t *testing.T, cfg Config) *Planner {
	t.Helper()
	p, err := NewPlanner(cfg, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestRecommendLightlyLoadedCrossing(t *testing.T) {
	// 340 arrivals/hour against 3600 services/hour: rho = 0.094 at a single
	// server, W_q well under the 5 second target.
	cfg := DefaultConfig()
	cfg.TargetWait = 5.0
	cfg.MaxServers = 5
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("pedestrian_commuter", 0.0944, 1.0, 1.11, 1.0)
	require.NoError(t, err)

	assert.True(t, rec.Feasible)
	assert.Equal(t, 1, rec.Servers)
	assert.InDelta(t, 0.0944, rec.Result.Utilization, 1e-9)
	assert.Less(t, rec.Result.WaitInQueue, 5.0)
	assert.Greater(t, rec.Result.WaitInQueue, 0.0)
	assert.Len(t, rec.Candidates, 5)
}

func TestRecommendSelectsSmallestFeasibleCount(t *testing.T) {
	// rho at one server is 2.4: the first two counts are unstable or over
	// target, so the search has to walk upward.
	cfg := DefaultConfig()
	cfg.TargetWait = 1.0
	cfg.MaxServers = 10
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("eastbound_vehicle", 2.4, 1.0, 1.2, 1.0)
	require.NoError(t, err)
	require.True(t, rec.Feasible)

	// Every smaller count must genuinely fail the target.
	for _, cand := range rec.Candidates[:rec.Servers-1] {
		assert.False(t, cand.MeetsTarget, "c=%d should not meet target", cand.Servers)
	}
	assert.True(t, rec.Candidates[rec.Servers-1].MeetsTarget)
}

func TestRecommendInfeasibleIsExplicit(t *testing.T) {
	// Demand exceeds the whole search bound's capacity.
	cfg := DefaultConfig()
	cfg.TargetWait = 5.0
	cfg.MaxServers = 3
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("southbound_vehicle", 5.0, 1.0, 1.0, 1.0)
	require.ErrorIs(t, err, ErrInfeasible)

	assert.False(t, rec.Feasible)
	assert.Equal(t, 3, rec.Servers)
	assert.True(t, rec.Result.Unstable, "best achievable at the bound is still unstable")
	assert.Len(t, rec.Candidates, 3)
}

func TestRecommendInfeasibleTightTarget(t *testing.T) {
	// Stable at the bound but the target is unreachably tight: the best
	// partial result must be surfaced, not silently returned as success.
	cfg := DefaultConfig()
	cfg.TargetWait = 1e-9
	cfg.MaxServers = 4
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("pedestrian_elderly", 0.8, 1.0, 1.5, 1.2)
	require.ErrorIs(t, err, ErrInfeasible)

	assert.False(t, rec.Feasible)
	assert.False(t, rec.Result.Unstable)
	assert.Greater(t, rec.Result.WaitInQueue, cfg.TargetWait)
}

func TestRecommendCandidateTableMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxServers = 60
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("x", 3.0, 1.0, 1.4, 1.1)
	require.NoError(t, err)

	prev := -1.0
	for _, cand := range rec.Candidates {
		if cand.Result.Unstable {
			continue
		}
		if prev >= 0 {
			assert.LessOrEqual(t, cand.Result.WaitInQueue, prev)
		}
		prev = cand.Result.WaitInQueue
	}
	// At large c the marginal W_q gain of one more server shrinks toward
	// 2/c, so a wide search must cross the 5% threshold.
	assert.Greater(t, rec.DiminishingReturnsAt, 0)
	assert.Less(t, rec.DiminishingReturnsAt, cfg.MaxServers)
}

func TestScenariosCoverConfiguredBands(t *testing.T) {
	p := newTestPlanner(t, DefaultConfig())

	rec, err := p.Recommend("x", 2.0, 1.0, 1.0, 1.0)
	require.NoError(t, err)
	require.Len(t, rec.Scenarios, 4)

	// Tighter bands require at least as many servers.
	for i := 1; i < len(rec.Scenarios); i++ {
		assert.GreaterOrEqual(t, rec.Scenarios[i].Servers, rec.Scenarios[i-1].Servers)
	}
	for _, sc := range rec.Scenarios {
		assert.False(t, sc.Result.Unstable)
		assert.LessOrEqual(t, sc.Result.Utilization, sc.Band.Rho+1e-12)
	}
}

func TestRecommendServiceLevelAndExactCrossCheck(t *testing.T) {
	p := newTestPlanner(t, DefaultConfig())

	rec, err := p.Recommend("pedestrian", 0.5, 1.0, 1.0, 1.0)
	require.NoError(t, err)
	require.True(t, rec.Feasible)
	require.Equal(t, 1, rec.Servers)

	expected := queueing.ProbWaitExceeds(rec.Result.WaitInQueue, DefaultTargetWait)
	assert.InEpsilon(t, expected, rec.ProbWaitExceedsTarget, 1e-12)
	assert.Greater(t, rec.ProbWaitExceedsTarget, 0.0)
	assert.Less(t, rec.ProbWaitExceedsTarget, 1.0)

	// With both CVs at 1 and a single server, Kingman reduces to the exact
	// M/M/1 result, so the cross-check must agree.
	require.NotNil(t, rec.ExactMMC)
	assert.False(t, rec.ExactMMC.Unstable)
	assert.InEpsilon(t, rec.Result.WaitInQueue, rec.ExactMMC.WaitInQueue, 1e-9)
	assert.InEpsilon(t, rec.Result.QueueLength, rec.ExactMMC.QueueLength, 1e-9)
}

func TestRecommendSkipsExactCrossCheckOffMarkovian(t *testing.T) {
	p := newTestPlanner(t, DefaultConfig())

	rec, err := p.Recommend("pedestrian", 0.5, 1.0, 1.5, 1.0)
	require.NoError(t, err)
	assert.Nil(t, rec.ExactMMC)
	assert.Greater(t, rec.ProbWaitExceedsTarget, 0.0)
}

func TestRecommendInfeasibleServiceLevelPinnedAtOne(t *testing.T) {
	// The best result within the bound is unstable, so the probability of
	// exceeding any finite target is 1.
	cfg := DefaultConfig()
	cfg.TargetWait = 5.0
	cfg.MaxServers = 3
	p := newTestPlanner(t, cfg)

	rec, err := p.Recommend("southbound_vehicle", 5.0, 1.0, 1.0, 1.0)
	require.ErrorIs(t, err, ErrInfeasible)
	assert.Equal(t, 1.0, rec.ProbWaitExceedsTarget)
}

func TestRecommendPropagatesInvalidInput(t *testing.T) {
	p := newTestPlanner(t, DefaultConfig())

	_, err := p.Recommend("x", -1.0, 1.0, 1.0, 1.0)
	assert.ErrorIs(t, err, queueing.ErrInvalidInput)

	_, err = p.Recommend("x", 1.0, 0.0, 1.0, 1.0)
	assert.ErrorIs(t, err, queueing.ErrInvalidInput)
}

func TestNewPlannerValidatesConfig(t *testing.T) {
	_, err := NewPlanner(Config{TargetWait: 0, MaxServers: 5}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewPlanner(Config{TargetWait: 5, MaxServers: 0}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg := DefaultConfig()
	cfg.Bands = []Band{{Name: "broken", Rho: 1.5}}
	_, err = NewPlanner(cfg, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidInput)
}
