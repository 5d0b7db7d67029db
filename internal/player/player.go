package player

import "banditlab/internal/arm"

// Player is a bandit strategy.
//
// Rounds are 1-indexed. Choose may mutate the player (randomized strategies
// consume their own random source), so a Player must not be shared between
// concurrent experiments.
type Player interface {
	// Choose returns the arm to pull in round t
	Choose(t int) int

	// Update records the reward observed for arm
	Update(arm int, reward float64)

	// CumulativeReward returns the reward collected so far
	CumulativeReward() float64

	// Arms exposes the per-arm statistics for reporting
	Arms() *arm.Set

	// Name is a display name for reports
	Name() string
}

func requireRound(t int) {
	if t < 1 {
		panic("player: round index must be positive")
	}
}
