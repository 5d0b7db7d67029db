package player

import (
	"fmt"
	"math"

	"banditlab/internal/arm"
)

// UCB plays the arm with the highest upper confidence bound at a fixed
// confidence level
type UCB struct {
	arms       *arm.Set
	confidence float64
}

// NewUCB creates a UCB player. The bound uses delta = 1/confidence, so a
// confidence below 1 widens the bound.
func NewUCB(nArms int, confidence float64) *UCB {
	if !(confidence > 0) || math.IsInf(confidence, 1) {
		panic(fmt.Sprintf("player: confidence (= %v) must be positive and finite", confidence))
	}
	return &UCB{arms: arm.NewSet(nArms), confidence: confidence}
}

// Name implements Player
func (u *UCB) Name() string {
	return "UCB"
}

// Choose implements Player
func (u *UCB) Choose(_ int) int {
	if a, ok := u.arms.NotPulled(); ok {
		return a
	}
	return arm.Argmax(u.arms.UCBs(1 / u.confidence))
}

// Update implements Player
func (u *UCB) Update(a int, reward float64) {
	u.arms.Update(a, reward)
}

// CumulativeReward implements Player
func (u *UCB) CumulativeReward() float64 {
	return u.arms.CumulativeReward()
}

// Arms implements Player
func (u *UCB) Arms() *arm.Set {
	return u.arms
}

// AsymptoticUCB is UCB with the confidence schedule 1 + t ln(t)^2, which
// makes it asymptotically optimal
type AsymptoticUCB struct {
	arms *arm.Set
}

// NewAsymptoticUCB creates an asymptotically optimal UCB player
func NewAsymptoticUCB(nArms int) *AsymptoticUCB {
	return &AsymptoticUCB{arms: arm.NewSet(nArms)}
}

// Name implements Player
func (u *AsymptoticUCB) Name() string {
	return "Asymptotically-Optimal-UCB"
}

// Choose implements Player
func (u *AsymptoticUCB) Choose(t int) int {
	if a, ok := u.arms.NotPulled(); ok {
		return a
	}
	requireRound(t)
	return arm.Argmax(u.arms.UCBs(asymptoticDelta(t)))
}

func asymptoticDelta(t int) float64 {
	lt := math.Log(float64(t))
	return 1 + float64(t)*lt*lt
}

// Update implements Player
func (u *AsymptoticUCB) Update(a int, reward float64) {
	u.arms.Update(a, reward)
}

// CumulativeReward implements Player
func (u *AsymptoticUCB) CumulativeReward() float64 {
	return u.arms.CumulativeReward()
}

// Arms implements Player
func (u *AsymptoticUCB) Arms() *arm.Set {
	return u.arms
}
