package env

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stochastic is a sub-gaussian environment: every arm draws its reward from a
// normal distribution around a fixed location, clipped to [0, 1]
type Stochastic struct {
	src       *rand.PCG
	locations []float64
	dists     []distuv.Normal
}

// NewStochastic draws one location per arm uniformly from [min, max) and pairs
// it with normal noise of standard deviation sigma. The seed drives both the
// locations and every later reward.
func NewStochastic(nArms int, min, max, sigma float64, seed uint64) *Stochastic {
	if nArms <= 0 {
		panic(fmt.Sprintf("env: number of arms (= %d) must be positive", nArms))
	}
	if max < min {
		panic(fmt.Sprintf("env: empty location range [%v, %v)", min, max))
	}

	src := rand.NewPCG(seed, seed)
	uni := distuv.Uniform{Min: min, Max: max, Src: src}
	locations := make([]float64, nArms)
	for i := range locations {
		locations[i] = uni.Rand()
	}
	return newStochastic(src, locations, sigma)
}

// NewStochasticWithMeans builds a stochastic environment with fixed locations
func NewStochasticWithMeans(locations []float64, sigma float64, seed uint64) *Stochastic {
	if len(locations) == 0 {
		panic("env: number of arms (= 0) must be positive")
	}
	locs := make([]float64, len(locations))
	copy(locs, locations)
	return newStochastic(rand.NewPCG(seed, seed), locs, sigma)
}

func newStochastic(src *rand.PCG, locations []float64, sigma float64) *Stochastic {
	if sigma < 0 || math.IsNaN(sigma) {
		panic(fmt.Sprintf("env: sigma (= %v) must be non-negative", sigma))
	}
	dists := make([]distuv.Normal, len(locations))
	for i, mu := range locations {
		dists[i] = distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	}
	return &Stochastic{src: src, locations: locations, dists: dists}
}

// Reveal samples a reward for arm, clipped to [0, 1]
func (s *Stochastic) Reveal(arm int) float64 {
	x := s.dists[arm].Rand()
	return math.Min(math.Max(x, 0), 1)
}

// BestArm returns the arm with the highest location (first one on ties)
func (s *Stochastic) BestArm() int {
	return floats.MaxIdx(s.locations)
}

// Locations returns a copy of the per-arm location parameters
func (s *Stochastic) Locations() []float64 {
	out := make([]float64, len(s.locations))
	copy(out, s.locations)
	return out
}
