package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"banditlab/internal/arm"
	"banditlab/internal/config"
	"banditlab/internal/env"
	"banditlab/internal/player"
)

// Trace stores every round of one experiment together with the
// configuration that produced it, so the run can be replayed
type Trace struct {
	RunID   string        `json:"run_id"`
	Config  config.Config `json:"config"`
	Arms    []int         `json:"arms"`
	Rewards []float64     `json:"rewards"`
	Result  Result        `json:"result"`
}

// NewTrace creates an empty trace for a run
func NewTrace(runID string, cfg config.Config) *Trace {
	return &Trace{
		RunID:   runID,
		Config:  cfg,
		Arms:    make([]int, 0, cfg.Horizon),
		Rewards: make([]float64, 0, cfg.Horizon),
	}
}

// Record appends a round; it has the RoundFunc signature
func (tr *Trace) Record(_, arm int, reward float64) {
	tr.Arms = append(tr.Arms, arm)
	tr.Rewards = append(tr.Rewards, reward)
}

// SetResult sets the final result of the run
func (tr *Trace) SetResult(r Result) {
	tr.Result = r
}

// CumulativeRewards returns the running reward total after each round
func (tr *Trace) CumulativeRewards() []float64 {
	out := make([]float64, len(tr.Rewards))
	total := 0.0
	for i, r := range tr.Rewards {
		total += r
		out[i] = total
	}
	return out
}

// ArmStats rebuilds the per-arm statistics of the recorded rounds
func (tr *Trace) ArmStats() *arm.Set {
	set := arm.NewSet(tr.Config.NArms)
	for i, a := range tr.Arms {
		set.Update(a, tr.Rewards[i])
	}
	return set
}

// Save writes the trace to a file
func (tr *Trace) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTrace loads a trace from a file
func LoadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("decode trace %s: %w", path, err)
	}
	if len(tr.Arms) != len(tr.Rewards) {
		return nil, fmt.Errorf("trace %s: %d arms but %d rewards", path, len(tr.Arms), len(tr.Rewards))
	}
	return &tr, nil
}

// Verify replays the trace with a freshly built player and environment and
// reports the first round where the run diverges
func (tr *Trace) Verify(p player.Player, e env.Environment) error {
	horizon := len(tr.Arms)
	var mismatch error
	check := func(round, arm int, reward float64) {
		if mismatch != nil {
			return
		}
		i := round - 1
		if arm != tr.Arms[i] || reward != tr.Rewards[i] {
			mismatch = fmt.Errorf("round %d: replay chose arm %d for %v, trace has arm %d for %v",
				round, arm, reward, tr.Arms[i], tr.Rewards[i])
		}
	}

	got := Run(p, e, horizon, check)
	if mismatch != nil {
		return mismatch
	}
	if got != tr.Result {
		return fmt.Errorf("replay result %+v differs from trace result %+v", got, tr.Result)
	}
	return nil
}
