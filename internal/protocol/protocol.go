package protocol

import (
	"fmt"

	"banditlab/internal/env"
	"banditlab/internal/player"
)

// RoundFunc observes one finished round
type RoundFunc func(round, arm int, reward float64)

// Result holds what a finished experiment reports
type Result struct {
	Player           string  `json:"player"`
	Horizon          int     `json:"horizon"`
	CumulativeReward float64 `json:"cumulative_reward"`
	BestArm          int     `json:"best_arm"` // best arm in hindsight
	NextArm          int     `json:"next_arm"` // the player's choice for round horizon+1
}

// Run plays horizon rounds of p against e. Each round is strictly
// choose, reveal, update; observers see the round after the update.
func Run(p player.Player, e env.Environment, horizon int, observers ...RoundFunc) Result {
	if horizon < 0 {
		panic(fmt.Sprintf("protocol: horizon (= %d) must not be negative", horizon))
	}

	for t := 1; t <= horizon; t++ {
		arm := p.Choose(t)
		reward := e.Reveal(arm)
		p.Update(arm, reward)
		for _, observe := range observers {
			observe(t, arm, reward)
		}
	}

	return Result{
		Player:           p.Name(),
		Horizon:          horizon,
		CumulativeReward: p.CumulativeReward(),
		BestArm:          e.BestArm(),
		NextArm:          p.Choose(horizon + 1),
	}
}
