package eval

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banditlab/internal/config"
	"banditlab/internal/env"
	"banditlab/internal/player"
	"banditlab/internal/protocol"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Horizon = 300
	cfg.NArms = 5
	cfg.Eval.Runs = 4
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewPlayerKinds(t *testing.T) {
	cfg := testConfig(t)
	want := map[string]string{
		config.PlayerETC:           "ETC",
		config.PlayerUCB:           "UCB",
		config.PlayerAsymptoticUCB: "Asymptotically-Optimal-UCB",
		config.PlayerExp3:          "EXP3",
		config.PlayerExp3IX:        "EXP3-IX",
	}
	for _, kind := range config.PlayerKinds {
		c := cfg.WithPlayer(kind)
		p := NewPlayer(&c)
		assert.Equal(t, want[kind], p.Name(), kind)
		assert.Equal(t, cfg.NArms, p.Arms().Len())
	}

	cfg.Player.Kind = "greedy"
	assert.Panics(t, func() { NewPlayer(cfg) })
}

func TestNewPlayerExp3IXConfidence(t *testing.T) {
	cfg := testConfig(t)
	cfg.Player.Kind = config.PlayerExp3IX
	delta := 0.05
	cfg.Player.Confidence = &delta

	p, ok := NewPlayer(cfg).(*player.Exp3IX)
	require.True(t, ok)
	want := player.NewExp3IXWithConfidence(cfg.NArms, cfg.Horizon, cfg.Seed, delta)
	assert.Equal(t, want.LearningRate(), p.LearningRate())
}

func TestNewEnvironmentKinds(t *testing.T) {
	cfg := testConfig(t)

	_, ok := NewEnvironment(cfg).(*env.Stochastic)
	assert.True(t, ok)

	cfg.Environment.Kind = config.EnvAdversary
	_, ok = NewEnvironment(cfg).(*env.Adversary)
	assert.True(t, ok)

	cfg.Environment.Kind = "markov"
	assert.Panics(t, func() { NewEnvironment(cfg) })
}

func TestRunOnceDeterministic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Player.Kind = config.PlayerExp3
	ev := NewEvaluator(cfg, quietLogger())

	a := ev.RunOnce(*cfg)
	b := ev.RunOnce(*cfg)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.CumulativeReward, b.CumulativeReward)
	assert.Equal(t, a.NextArm, b.NextArm)
	assert.Equal(t, cfg.Seed, a.Seed)
	assert.Equal(t, "EXP3", a.Player)
}

func TestRunOnceStats(t *testing.T) {
	cfg := testConfig(t)
	cfg.Player.Kind = config.PlayerUCB
	ev := NewEvaluator(cfg, quietLogger())

	rounds := 0
	stats := ev.RunOnce(*cfg, func(int, int, float64) { rounds++ })

	assert.Equal(t, cfg.Horizon, rounds)
	assert.Equal(t, cfg.Horizon, stats.Horizon)
	assert.GreaterOrEqual(t, stats.BestArmShare, 0.0)
	assert.LessOrEqual(t, stats.BestArmShare, 1.0)
	assert.GreaterOrEqual(t, stats.CumulativeReward, 0.0)
	assert.LessOrEqual(t, stats.CumulativeReward, float64(cfg.Horizon))
}

func TestAdversaryDefeatsETC(t *testing.T) {
	cfg := config.Default()
	cfg.NArms = 2
	cfg.Horizon = 100
	cfg.Player.Kind = config.PlayerETC
	cfg.Player.PullEachArm = 10
	cfg.Environment.Kind = config.EnvAdversary
	cfg.Environment.PullEachArm = 10
	require.NoError(t, cfg.Validate())

	stats := NewEvaluator(cfg, quietLogger()).RunOnce(*cfg)

	// the first arm is 0 and the player commits to it
	assert.Equal(t, 0, stats.NextArm)
	assert.Equal(t, 1, stats.BestArm)
	assert.False(t, stats.HitBestArm())
	assert.Equal(t, 1.0, stats.CumulativeReward)
	assert.InDelta(t, 0.1, stats.BestArmShare, 1e-12)
}

func TestSweepUsesConsecutiveSeeds(t *testing.T) {
	cfg := testConfig(t)
	cfg.Eval.BaseSeed = 50
	ev := NewEvaluator(cfg, quietLogger())

	assert.Equal(t, []uint64{50, 51, 52, 53}, ev.Seeds())

	runs, agg := ev.Sweep()
	require.Len(t, runs, 4)
	for i, r := range runs {
		assert.Equal(t, uint64(50+i), r.Seed)
	}
	assert.Equal(t, 4, agg.NumRuns)
	assert.Equal(t, "ETC", agg.Player)
	assert.GreaterOrEqual(t, agg.RewardMax, agg.RewardMean)
	assert.LessOrEqual(t, agg.RewardMin, agg.RewardMean)
}

func TestCompareCoversEveryPlayer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Eval.Runs = 2
	ev := NewEvaluator(cfg, quietLogger())

	cmp := ev.Compare()
	require.Len(t, cmp, len(config.PlayerKinds))
	for i, c := range cmp {
		assert.Equal(t, config.PlayerKinds[i], c.Kind)
		assert.Equal(t, 2, c.Stats.NumRuns)
		require.Len(t, c.Curve, cfg.Horizon)
		assert.InDelta(t, c.Stats.RewardMean, c.Curve[len(c.Curve)-1], 1e-9)
		for j := 1; j < len(c.Curve); j++ {
			assert.GreaterOrEqual(t, c.Curve[j], c.Curve[j-1])
		}
	}
}

func TestCompareWithUCBConfidenceAboveOne(t *testing.T) {
	cfg, err := config.Parse([]byte(`
horizon: 50
n_arms: 3
player: {kind: ucb, confidence: 2}
eval: {runs: 2}
`))
	require.NoError(t, err)
	ev := NewEvaluator(cfg, quietLogger())

	var cmp []Comparison
	require.NotPanics(t, func() { cmp = ev.Compare() })
	require.Len(t, cmp, len(config.PlayerKinds))

	// EXP3-IX runs with its own default learning rate
	for _, c := range cmp {
		if c.Kind == config.PlayerExp3IX {
			assert.Equal(t, "EXP3-IX", c.Stats.Player)
		}
	}
	ix := cfg.WithPlayer(config.PlayerExp3IX)
	p, ok := NewPlayer(&ix).(*player.Exp3IX)
	require.True(t, ok)
	assert.Equal(t, player.NewExp3IX(cfg.NArms, cfg.Horizon, cfg.Seed).LearningRate(), p.LearningRate())
}

func TestReplayRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	cfg.Player.Kind = config.PlayerExp3IX
	ev := NewEvaluator(cfg, quietLogger())

	stats, tr := ev.RunWithTrace(*cfg)
	assert.Equal(t, stats.RunID, tr.RunID)
	assert.Len(t, tr.Arms, cfg.Horizon)

	path := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, tr.Save(path))
	loaded, err := protocol.LoadTrace(path)
	require.NoError(t, err)

	assert.NoError(t, ev.Replay(loaded))
}

func TestReplayRejectsTruncatedTrace(t *testing.T) {
	cfg := testConfig(t)
	ev := NewEvaluator(cfg, quietLogger())

	_, tr := ev.RunWithTrace(*cfg)
	tr.Arms = tr.Arms[:10]
	tr.Rewards = tr.Rewards[:10]
	assert.Error(t, ev.Replay(tr))
}

func TestReplayRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	ev := NewEvaluator(cfg, quietLogger())

	_, tr := ev.RunWithTrace(*cfg)
	tr.Config.Player.Kind = "greedy"
	assert.Error(t, ev.Replay(tr))
}
