package player

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"banditlab/internal/arm"
)

// weights is the exponential-weighting state shared by EXP3 and EXP3-IX
type weights struct {
	arms    *arm.Set
	src     *rand.PCG
	uniform distuv.Uniform

	learningRate  float64
	gamma         float64
	probabilities []float64
	estimators    []float64

	scaled []float64 // scratch for the log-sum-exp
}

func newWeights(nArms int, seed uint64, learningRate, gamma float64) weights {
	arms := arm.NewSet(nArms)
	src := rand.NewPCG(seed, seed)

	probabilities := make([]float64, nArms)
	for k := range probabilities {
		probabilities[k] = 1 / float64(nArms)
	}

	return weights{
		arms:          arms,
		src:           src,
		uniform:       distuv.Uniform{Min: 0, Max: 1, Src: src},
		learningRate:  learningRate,
		gamma:         gamma,
		probabilities: probabilities,
		estimators:    make([]float64, nArms),
		scaled:        make([]float64, nArms),
	}
}

// choose samples an arm from the current distribution by walking its
// cumulative mass. Rounding can leave the total just under r; the last arm
// takes that remainder.
func (w *weights) choose() int {
	r := w.uniform.Rand()

	cdf := 0.0
	for k, p := range w.probabilities {
		cdf += p
		if r < cdf {
			return k
		}
	}
	return len(w.probabilities) - 1
}

func (w *weights) update(a int, reward float64) {
	w.arms.Update(a, reward)

	// importance-weighted loss; unplayed arms see an implicit zero loss
	x := (1 - reward) / (w.probabilities[a] + w.gamma)
	for k := range w.estimators {
		if k == a {
			w.estimators[k] += 1 - x
		} else {
			w.estimators[k] += 1
		}
	}

	for k, e := range w.estimators {
		w.scaled[k] = w.learningRate * e
	}
	norm := floats.LogSumExp(w.scaled)
	for k, s := range w.scaled {
		w.probabilities[k] = math.Exp(s - norm)
	}
}

func (w *weights) snapshot() []float64 {
	out := make([]float64, len(w.probabilities))
	copy(out, w.probabilities)
	return out
}

func requireHorizon(horizon int) {
	if horizon < 1 {
		panic(fmt.Sprintf("player: horizon (= %d) must be positive", horizon))
	}
}

// Exp3 is the exponential-weight algorithm for adversarial bandits. Its regret
// guarantee holds in expectation.
type Exp3 struct {
	weights
}

// NewExp3 creates an EXP3 player for a known horizon
func NewExp3(nArms, horizon int, seed uint64) *Exp3 {
	requireHorizon(horizon)
	if nArms <= 0 {
		panic(fmt.Sprintf("player: number of arms (= %d) must be positive", nArms))
	}
	k, n := float64(nArms), float64(horizon)
	eta := math.Sqrt(math.Log(k) / (k * n))
	return &Exp3{weights: newWeights(nArms, seed, eta, 0)}
}

// Name implements Player
func (e *Exp3) Name() string {
	return "EXP3"
}

// Choose implements Player. It draws from the player's own random source.
func (e *Exp3) Choose(_ int) int {
	return e.choose()
}

// Update implements Player
func (e *Exp3) Update(a int, reward float64) {
	e.update(a, reward)
}

// CumulativeReward implements Player
func (e *Exp3) CumulativeReward() float64 {
	return e.arms.CumulativeReward()
}

// Arms implements Player
func (e *Exp3) Arms() *arm.Set {
	return e.arms
}

// Probabilities returns a copy of the current sampling distribution
func (e *Exp3) Probabilities() []float64 {
	return e.snapshot()
}

// LearningRate returns the fixed learning rate
func (e *Exp3) LearningRate() float64 {
	return e.learningRate
}

// Exp3IX is EXP3 with implicit exploration: the bias gamma added to the
// importance weight turns the regret bound into a high-probability one.
type Exp3IX struct {
	weights
}

// NewExp3IX creates an EXP3-IX player without a confidence target, using the
// learning rate sqrt(2 ln(n+1) / (n horizon))
func NewExp3IX(nArms, horizon int, seed uint64) *Exp3IX {
	requireHorizon(horizon)
	if nArms <= 0 {
		panic(fmt.Sprintf("player: number of arms (= %d) must be positive", nArms))
	}
	k, n := float64(nArms), float64(horizon)
	eta := math.Sqrt(2 * math.Log(k+1) / (k * n))
	return &Exp3IX{weights: newWeights(nArms, seed, eta, eta/2)}
}

// NewExp3IXWithConfidence creates an EXP3-IX player whose regret bound holds
// with probability at least 1 - delta
func NewExp3IXWithConfidence(nArms, horizon int, seed uint64, delta float64) *Exp3IX {
	requireHorizon(horizon)
	if nArms <= 0 {
		panic(fmt.Sprintf("player: number of arms (= %d) must be positive", nArms))
	}
	if !(delta > 0 && delta < 1) {
		panic(fmt.Sprintf("player: confidence (= %v) must lie in (0, 1)", delta))
	}
	k, n := float64(nArms), float64(horizon)
	eta := math.Sqrt((math.Log(k) + math.Log((k+1)/delta)) / (k * n))
	return &Exp3IX{weights: newWeights(nArms, seed, eta, eta/2)}
}

// Name implements Player
func (e *Exp3IX) Name() string {
	return "EXP3-IX"
}

// Choose implements Player. It draws from the player's own random source.
func (e *Exp3IX) Choose(_ int) int {
	return e.choose()
}

// Update implements Player
func (e *Exp3IX) Update(a int, reward float64) {
	e.update(a, reward)
}

// CumulativeReward implements Player
func (e *Exp3IX) CumulativeReward() float64 {
	return e.arms.CumulativeReward()
}

// Arms implements Player
func (e *Exp3IX) Arms() *arm.Set {
	return e.arms
}

// Probabilities returns a copy of the current sampling distribution
func (e *Exp3IX) Probabilities() []float64 {
	return e.snapshot()
}

// LearningRate returns the fixed learning rate
func (e *Exp3IX) LearningRate() float64 {
	return e.learningRate
}

// Gamma returns the implicit exploration bias
func (e *Exp3IX) Gamma() float64 {
	return e.gamma
}
