package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/scenekit/scenepool/pkg/config"
	"github.com/scenekit/scenepool/pkg/errors"
	"github.com/scenekit/scenepool/pkg/testutil"
)

func benchConfig() *config.Config {
	cfg := config.NewDefault("sim-test")
	cfg.Simulation.Frames = 40
	cfg.Simulation.SpawnsPerFrame = 4
	cfg.Simulation.LifetimeFrames = 5
	cfg.Simulation.CascadeEvery = 10
	cfg.Simulation.FrameBudget = 0
	return cfg
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := benchConfig()
	cfg.Simulation.Frames = 0

	_, err := NewRunner(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestRunProducesBalancedReport(t *testing.T) {
	r, err := NewRunner(benchConfig(), testutil.TestLogger(t))
	require.NoError(t, err)
	defer r.Dispose()

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	report, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "sim-test", report.Name)
	assert.Equal(t, 40, report.Frames)
	assert.Equal(t, int64(40*4), report.Spawned)
	assert.Equal(t, int64(3), report.CascadeTeardowns, "frames 10, 20, 30")
	assert.Positive(t, report.Duration)
	assert.NotEmpty(t, report.Pools)

	// After the drain no pool holds a checkout.
	var returned int64
	for _, ps := range report.Pools {
		assert.Zero(t, ps.Active, "pool %s still has checkouts", ps.Prototype)
		assert.False(t, ps.Disposed)
		returned += ps.Returned
	}
	assert.Equal(t, report.Spawned, returned,
		"every spawn came back, by expiry or by cascade")
	assert.GreaterOrEqual(t, returned, report.Returned,
		"cascade returns are not counted as expiry returns")
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	run := func() *Report {
		r, err := NewRunner(benchConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)
		defer r.Dispose()
		report, err := r.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	a, b := run(), run()
	assert.Equal(t, a.Spawned, b.Spawned)
	assert.Equal(t, a.Returned, b.Returned)
	assert.Equal(t, a.CascadeTeardowns, b.CascadeTeardowns)
}

func TestRunHonorsPreWarm(t *testing.T) {
	cfg := benchConfig()
	cfg.Simulation.CascadeEvery = 0
	cfg.Pooling.PreWarm = map[string]int{"bullet": 64}

	r, err := NewRunner(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer r.Dispose()

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	for _, ps := range report.Pools {
		if ps.Prototype != "bullet" {
			continue
		}
		assert.Equal(t, int64(64), ps.Constructed,
			"a reserve larger than peak demand means no mid-run construction")
		return
	}
	t.Fatal("no bullet pool in report")
}

func TestRunRespectsCancellation(t *testing.T) {
	cfg := benchConfig()
	cfg.Simulation.Frames = 1_000_000

	r, err := NewRunner(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer r.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = r.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestDisposeQuiescesWorld(t *testing.T) {
	r, err := NewRunner(benchConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	r.Dispose()

	// Destroyed covers every instantiated node plus the hand-built ones:
	// one holding root per pool, one mount per cascade teardown, and the
	// world root. Anything beyond that would be a leak in the other
	// direction; anything less, an undestroyed instance.
	created, destroyed := r.graph.Counts()
	extra := int64(len(report.Pools)) + report.CascadeTeardowns + 1
	assert.Equal(t, created+extra, destroyed, "no leaked instance nodes")
}
