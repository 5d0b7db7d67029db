package arm

import (
	"fmt"
	"iter"
	"math"
)

// Stats tracks the observed rewards of a single arm
type Stats struct {
	cumulativeReward float64
	pulls            int
}

// Update records one observed reward
func (s *Stats) Update(reward float64) {
	s.cumulativeReward += reward
	s.pulls++
}

// CumulativeReward returns the sum of all rewards observed for this arm
func (s *Stats) CumulativeReward() float64 {
	return s.cumulativeReward
}

// Pulls returns how many times the arm was chosen
func (s *Stats) Pulls() int {
	return s.pulls
}

// NotPulled reports whether the arm has never been chosen
func (s *Stats) NotPulled() bool {
	return s.pulls == 0
}

// Mean returns the empirical mean reward.
// The second value is false when the arm was never pulled; the mean is
// undefined in that case and callers must check it before using the value.
func (s *Stats) Mean() (float64, bool) {
	if s.pulls == 0 {
		return 0, false
	}
	return s.cumulativeReward / float64(s.pulls), true
}

// UCB returns the upper confidence bound mean + sqrt(2 ln(delta) / pulls).
// An arm that was never pulled gets math.MaxFloat64 so it wins every comparison.
// delta must be positive. A delta below 1 makes ln(delta) negative and the
// bound falls under the mean; that is left to the caller.
func (s *Stats) UCB(delta float64) float64 {
	if !(delta > 0) {
		panic(fmt.Sprintf("arm: delta (= %v) must be positive", delta))
	}
	mean, ok := s.Mean()
	if !ok {
		return math.MaxFloat64
	}
	return mean + math.Sqrt(2*math.Log(delta)/float64(s.pulls))
}

// Set is a fixed-size, ordered collection of arm statistics
type Set struct {
	arms []Stats
}

// NewSet creates statistics for n arms, all unpulled
func NewSet(n int) *Set {
	if n <= 0 {
		panic(fmt.Sprintf("arm: number of arms (= %d) must be positive", n))
	}
	return &Set{arms: make([]Stats, n)}
}

// Len returns the number of arms
func (s *Set) Len() int {
	return len(s.arms)
}

// At returns a copy of the statistics of arm i
func (s *Set) At(i int) Stats {
	return s.arms[i]
}

// Update records a reward for arm i
func (s *Set) Update(i int, reward float64) {
	s.arms[i].Update(reward)
}

// NotPulled returns the first arm that was never chosen, in index order
func (s *Set) NotPulled() (int, bool) {
	for i := range s.arms {
		if s.arms[i].NotPulled() {
			return i, true
		}
	}
	return 0, false
}

// UCBs yields the upper confidence bound of every arm for the given delta
func (s *Set) UCBs(delta float64) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i := range s.arms {
			if !yield(i, s.arms[i].UCB(delta)) {
				return
			}
		}
	}
}

// Means yields the empirical mean of every arm.
// Every arm must have been pulled at least once; reaching an unpulled arm panics.
func (s *Set) Means() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i := range s.arms {
			mean, ok := s.arms[i].Mean()
			if !ok {
				panic(fmt.Sprintf("arm: mean of arm %d requested before it was pulled", i))
			}
			if !yield(i, mean) {
				return
			}
		}
	}
}

// CumulativeReward returns the reward collected over all arms
func (s *Set) CumulativeReward() float64 {
	total := 0.0
	for i := range s.arms {
		total += s.arms[i].cumulativeReward
	}
	return total
}

// TotalPulls returns the number of pulls over all arms
func (s *Set) TotalPulls() int {
	total := 0
	for i := range s.arms {
		total += s.arms[i].pulls
	}
	return total
}

// MostPulled returns the arm chosen most often (first one on ties)
func (s *Set) MostPulled() int {
	return Argmax(func(yield func(int, float64) bool) {
		for i := range s.arms {
			if !yield(i, float64(s.arms[i].pulls)) {
				return
			}
		}
	})
}

// Argmax returns the key of the first maximal value in seq.
// It panics on an empty sequence. Comparisons with NaN are false, so a NaN
// after the first element is never chosen while a NaN in first position
// always is.
func Argmax(seq iter.Seq2[int, float64]) int {
	best, bestVal, found := 0, 0.0, false
	for i, v := range seq {
		if !found || v > bestVal {
			best, bestVal, found = i, v, true
		}
	}
	if !found {
		panic("arm: argmax of an empty sequence")
	}
	return best
}
