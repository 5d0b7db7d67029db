package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStochasticRewardsClipped(t *testing.T) {
	e := NewStochastic(5, 0, 1, 3.0, 42)
	for i := 0; i < 2000; i++ {
		r := e.Reveal(i % 5)
		require.GreaterOrEqual(t, r, 0.0)
		require.LessOrEqual(t, r, 1.0)
	}
}

func TestStochasticLocationsInRange(t *testing.T) {
	e := NewStochastic(20, 0.25, 0.75, 1, 7)
	for _, mu := range e.Locations() {
		assert.GreaterOrEqual(t, mu, 0.25)
		assert.Less(t, mu, 0.75)
	}
}

func TestStochasticDeterministic(t *testing.T) {
	a := NewStochastic(4, 0, 1, 1, 1234)
	b := NewStochastic(4, 0, 1, 1, 1234)
	require.Equal(t, a.Locations(), b.Locations())
	require.Equal(t, a.BestArm(), b.BestArm())

	for i := 0; i < 500; i++ {
		arm := (i * 7) % 4
		require.Equal(t, a.Reveal(arm), b.Reveal(arm), "round %d", i+1)
	}
}

func TestStochasticSeedsDiffer(t *testing.T) {
	a := NewStochastic(4, 0, 1, 1, 1)
	b := NewStochastic(4, 0, 1, 1, 2)
	assert.NotEqual(t, a.Locations(), b.Locations())
}

func TestStochasticBestArmFirstMaximum(t *testing.T) {
	e := NewStochasticWithMeans([]float64{0.1, 0.8, 0.3, 0.8}, 0.1, 1)
	assert.Equal(t, 1, e.BestArm())
}

func TestStochasticZeroSigmaIsExact(t *testing.T) {
	e := NewStochasticWithMeans([]float64{0.2, 1.4, -0.5}, 0, 9)
	assert.Equal(t, 0.2, e.Reveal(0))
	assert.Equal(t, 1.0, e.Reveal(1))
	assert.Equal(t, 0.0, e.Reveal(2))
}

func TestStochasticRejectsBadParameters(t *testing.T) {
	assert.Panics(t, func() { NewStochastic(0, 0, 1, 1, 1) })
	assert.Panics(t, func() { NewStochastic(2, 1, 0, 1, 1) })
	assert.Panics(t, func() { NewStochastic(2, 0, 1, -1, 1) })
	assert.Panics(t, func() { NewStochasticWithMeans(nil, 1, 1) })
}

func TestAdversaryRewardSchedule(t *testing.T) {
	a := NewAdversary(2, 3)

	// exploration: round 1 pays, rounds 2..6 pay nothing
	assert.Equal(t, 1.0, a.Reveal(1))
	for round := 2; round <= 6; round++ {
		assert.Equal(t, 0.0, a.Reveal(round%2), "round %d", round)
	}

	first, ok := a.FirstArm()
	require.True(t, ok)
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, a.BestArm())

	// commit phase: the first arm starves, the others pay
	assert.Equal(t, 0.0, a.Reveal(1))
	assert.Equal(t, 1.0, a.Reveal(0))
	assert.Equal(t, 8, a.rounds())
}

func TestAdversaryBestArmBeforePlay(t *testing.T) {
	a := NewAdversary(3, 1)
	_, ok := a.FirstArm()
	assert.False(t, ok)
	assert.Equal(t, 1, a.BestArm())
}

func TestAdversaryRejectsZeroArms(t *testing.T) {
	assert.Panics(t, func() { NewAdversary(0, 1) })
}
