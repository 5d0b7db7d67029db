package eval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"banditlab/internal/config"
	"banditlab/internal/env"
	"banditlab/internal/player"
	"banditlab/internal/protocol"
)

// Evaluator builds experiments from configuration and runs them
type Evaluator struct {
	cfg *config.Config
	log *slog.Logger
}

// NewEvaluator creates a new evaluator. The config must be valid.
func NewEvaluator(cfg *config.Config, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{cfg: cfg, log: log}
}

// Config returns the base configuration of the evaluator
func (e *Evaluator) Config() *config.Config {
	return e.cfg
}

// NewPlayer builds the player described by cfg
func NewPlayer(cfg *config.Config) player.Player {
	switch cfg.Player.Kind {
	case config.PlayerETC:
		return player.NewETC(cfg.NArms, cfg.Player.PullEachArm)
	case config.PlayerUCB:
		return player.NewUCB(cfg.NArms, cfg.UCBConfidence())
	case config.PlayerAsymptoticUCB:
		return player.NewAsymptoticUCB(cfg.NArms)
	case config.PlayerExp3:
		return player.NewExp3(cfg.NArms, cfg.Horizon, cfg.Seed)
	case config.PlayerExp3IX:
		if cfg.Player.Confidence != nil {
			return player.NewExp3IXWithConfidence(cfg.NArms, cfg.Horizon, cfg.Seed, *cfg.Player.Confidence)
		}
		return player.NewExp3IX(cfg.NArms, cfg.Horizon, cfg.Seed)
	default:
		panic(fmt.Sprintf("eval: unknown player kind %q", cfg.Player.Kind))
	}
}

// NewEnvironment builds the environment described by cfg
func NewEnvironment(cfg *config.Config) env.Environment {
	switch cfg.Environment.Kind {
	case config.EnvStochastic:
		ec := cfg.Environment
		return env.NewStochastic(cfg.NArms, ec.RangeMin, ec.RangeMax, ec.Sigma, cfg.EnvSeed())
	case config.EnvAdversary:
		return env.NewAdversary(cfg.NArms, cfg.Environment.PullEachArm)
	default:
		panic(fmt.Sprintf("eval: unknown environment kind %q", cfg.Environment.Kind))
	}
}

// RunOnce plays one experiment with cfg and returns its statistics
func (e *Evaluator) RunOnce(cfg config.Config, observers ...protocol.RoundFunc) RunStats {
	stats, _ := e.run(cfg, observers)
	return stats
}

// RunWithTrace plays one experiment and records every round for replay
func (e *Evaluator) RunWithTrace(cfg config.Config, observers ...protocol.RoundFunc) (RunStats, *protocol.Trace) {
	tr := protocol.NewTrace("", cfg)
	stats, res := e.run(cfg, append([]protocol.RoundFunc{tr.Record}, observers...))
	tr.RunID = stats.RunID
	tr.SetResult(res)
	return stats, tr
}

func (e *Evaluator) run(cfg config.Config, observers []protocol.RoundFunc) (RunStats, protocol.Result) {
	runID := uuid.NewString()
	log := e.log.With("run_id", runID)

	p := NewPlayer(&cfg)
	en := NewEnvironment(&cfg)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		observers = append(observers, func(round, arm int, reward float64) {
			log.Debug("round", "t", round, "arm", arm, "reward", reward)
		})
	}

	log.Info("run started",
		"player", p.Name(),
		"environment", cfg.Environment.Kind,
		"seed", cfg.Seed,
		"horizon", cfg.Horizon)

	res := protocol.Run(p, en, cfg.Horizon, observers...)
	stats := RunStats{
		RunID:            runID,
		Player:           res.Player,
		Seed:             cfg.Seed,
		Horizon:          res.Horizon,
		CumulativeReward: res.CumulativeReward,
		BestArm:          res.BestArm,
		NextArm:          res.NextArm,
		MostPulled:       p.Arms().MostPulled(),
	}
	if res.Horizon > 0 {
		best := p.Arms().At(res.BestArm)
		stats.BestArmShare = float64(best.Pulls()) / float64(res.Horizon)
	}

	log.Info("run finished",
		"reward", stats.CumulativeReward,
		"best_arm", stats.BestArm,
		"next_arm", stats.NextArm,
		"best_arm_share", stats.BestArmShare)
	return stats, res
}

// Seeds returns the seeds of a multi-seed evaluation
func (e *Evaluator) Seeds() []uint64 {
	seeds := make([]uint64, e.cfg.Eval.Runs)
	for i := range seeds {
		seeds[i] = e.cfg.Eval.BaseSeed + uint64(i)
	}
	return seeds
}

// Sweep runs the configured experiment once per seed, one run after another
func (e *Evaluator) Sweep(observers ...protocol.RoundFunc) ([]RunStats, AggregatedStats) {
	seeds := e.Seeds()
	runs := make([]RunStats, len(seeds))
	for i, seed := range seeds {
		runs[i] = e.RunOnce(e.cfg.WithSeed(seed), observers...)
	}
	agg := Aggregate(runs)
	e.log.Info("sweep finished",
		"player", agg.Player,
		"runs", agg.NumRuns,
		"reward_mean", agg.RewardMean,
		"reward_std", agg.RewardStd,
		"robust", agg.RobustnessScore(e.cfg.Eval.RobustnessLambda),
		"hit_rate", agg.HitRate())
	return runs, agg
}

// Comparison is the sweep outcome of one player kind
type Comparison struct {
	Kind  string
	Stats AggregatedStats
	Curve []float64 // cumulative reward after each round, averaged over seeds
}

// Compare sweeps every player kind against the configured environment
func (e *Evaluator) Compare() []Comparison {
	seeds := e.Seeds()
	out := make([]Comparison, 0, len(config.PlayerKinds))

	for _, kind := range config.PlayerKinds {
		base := e.cfg.WithPlayer(kind)
		curve := make([]float64, base.Horizon)
		runs := make([]RunStats, len(seeds))

		for i, seed := range seeds {
			total := 0.0
			runs[i] = e.RunOnce(base.WithSeed(seed), func(round, _ int, reward float64) {
				total += reward
				curve[round-1] += total
			})
		}
		for i := range curve {
			curve[i] /= float64(len(seeds))
		}

		out = append(out, Comparison{Kind: kind, Stats: Aggregate(runs), Curve: curve})
	}
	return out
}

// Replay rebuilds the player and environment stored in a trace and checks
// that the run reproduces exactly
func (e *Evaluator) Replay(tr *protocol.Trace) error {
	cfg := tr.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("trace %s: %w", tr.RunID, err)
	}
	if cfg.Horizon != len(tr.Arms) {
		return fmt.Errorf("trace %s: horizon %d but %d recorded rounds", tr.RunID, cfg.Horizon, len(tr.Arms))
	}
	if err := tr.Verify(NewPlayer(&cfg), NewEnvironment(&cfg)); err != nil {
		return fmt.Errorf("trace %s: %w", tr.RunID, err)
	}
	e.log.Info("replay verified", "run_id", tr.RunID, "rounds", len(tr.Arms))
	return nil
}
