package env

import "fmt"

// Adversary is a deterministic worst case for explore-then-commit.
//
// It rewards the very first pull, starves every arm for the rest of the
// exploration phase, and afterwards pays 1 for every arm except the first one.
// An explore-then-commit player with the same budget therefore commits to the
// first arm it played, which is the only losing arm.
type Adversary struct {
	nArms       int
	pullEachArm int
	roundCount  int
	firstArm    int
	recorded    bool
}

// NewAdversary creates an adversary tuned to an exploration budget of
// pullEachArm pulls per arm
func NewAdversary(nArms, pullEachArm int) *Adversary {
	if nArms <= 0 {
		panic(fmt.Sprintf("env: number of arms (= %d) must be positive", nArms))
	}
	if pullEachArm < 0 {
		panic(fmt.Sprintf("env: pull_each_arm (= %d) must not be negative", pullEachArm))
	}
	return &Adversary{nArms: nArms, pullEachArm: pullEachArm}
}

// Reveal returns the adversarial reward for arm
func (a *Adversary) Reveal(arm int) float64 {
	a.roundCount++
	if a.roundCount == 1 {
		a.firstArm = arm
		a.recorded = true
		return 1
	}

	if a.roundCount <= a.nArms*a.pullEachArm {
		return 0
	}
	if arm == a.firstArm {
		return 0
	}
	return 1
}

// BestArm returns the arm after the first one played.
// Before any round it assumes arm 0 will be played first.
func (a *Adversary) BestArm() int {
	return (a.firstArm + 1) % a.nArms
}

// FirstArm returns the arm played in round 1, if any round was played
func (a *Adversary) FirstArm() (int, bool) {
	return a.firstArm, a.recorded
}

// rounds returns the number of rewards revealed so far
func (a *Adversary) rounds() int {
	return a.roundCount
}
