package player

import (
	"fmt"

	"banditlab/internal/arm"
)

// ETC is the explore-then-commit strategy: it pulls every arm pullEachArm
// times in round-robin order, then commits for good to the arm with the best
// empirical mean.
type ETC struct {
	arms        *arm.Set
	pullEachArm int
	roundCount  int

	bestArm   int
	committed bool
}

// NewETC creates an explore-then-commit player
func NewETC(nArms, pullEachArm int) *ETC {
	if pullEachArm < 1 {
		panic(fmt.Sprintf("player: pull_each_arm (= %d) must be at least 1", pullEachArm))
	}
	return &ETC{
		arms:        arm.NewSet(nArms),
		pullEachArm: pullEachArm,
	}
}

// Name implements Player
func (e *ETC) Name() string {
	return "ETC"
}

// Choose implements Player
func (e *ETC) Choose(t int) int {
	requireRound(t)
	if e.committed {
		return e.bestArm
	}
	return (t - 1) % e.arms.Len()
}

// Update implements Player. The commit happens here, exactly once, on the
// update that exhausts the exploration budget.
func (e *ETC) Update(a int, reward float64) {
	e.arms.Update(a, reward)
	e.roundCount++

	if !e.committed && e.roundCount >= e.ExplorationRounds() {
		e.bestArm = arm.Argmax(e.arms.Means())
		e.committed = true
	}
}

// ExplorationRounds is the length of the exploration phase
func (e *ETC) ExplorationRounds() int {
	return e.pullEachArm * e.arms.Len()
}

// Committed returns the arm the player committed to, if it has
func (e *ETC) Committed() (int, bool) {
	return e.bestArm, e.committed
}

// CumulativeReward implements Player
func (e *ETC) CumulativeReward() float64 {
	return e.arms.CumulativeReward()
}

// Arms implements Player
func (e *ETC) Arms() *arm.Set {
	return e.arms
}
