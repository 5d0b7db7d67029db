package eval

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunStats captures the metrics of a single experiment
type RunStats struct {
	RunID            string  // unique id of the run
	Player           string  // display name of the player
	Seed             uint64  // seed used for player and environment
	Horizon          int     // number of rounds played
	CumulativeReward float64 // total reward collected
	BestArm          int     // best arm in hindsight
	NextArm          int     // the player's choice for the next round
	MostPulled       int     // arm chosen most often
	BestArmShare     float64 // fraction of rounds spent on the best arm
}

// HitBestArm reports whether the player's next choice is the best arm
func (r RunStats) HitBestArm() bool {
	return r.NextArm == r.BestArm
}

// AggregatedStats holds statistics across multiple runs of one player
type AggregatedStats struct {
	Player      string
	RewardMean  float64
	RewardStd   float64
	RewardMin   float64
	RewardMax   float64
	ShareMean   float64 // mean fraction of rounds on the best arm
	BestArmHits int     // runs whose next choice is the best arm
	NumRuns     int
}

// Aggregate computes statistics from multiple runs
func Aggregate(runs []RunStats) AggregatedStats {
	n := len(runs)
	if n == 0 {
		return AggregatedStats{}
	}

	rewards := make([]float64, n)
	shares := make([]float64, n)
	agg := AggregatedStats{Player: runs[0].Player, NumRuns: n}
	for i, r := range runs {
		rewards[i] = r.CumulativeReward
		shares[i] = r.BestArmShare
		if r.HitBestArm() {
			agg.BestArmHits++
		}
	}

	// sample std is undefined for a single run
	if n == 1 {
		agg.RewardMean = rewards[0]
	} else {
		agg.RewardMean, agg.RewardStd = stat.MeanStdDev(rewards, nil)
	}
	agg.RewardMin = floats.Min(rewards)
	agg.RewardMax = floats.Max(rewards)
	agg.ShareMean = stat.Mean(shares, nil)
	return agg
}

// HitRate is the fraction of runs whose next choice is the best arm
func (a AggregatedStats) HitRate() float64 {
	if a.NumRuns == 0 {
		return 0
	}
	return float64(a.BestArmHits) / float64(a.NumRuns)
}

// RobustnessScore ranks players by mean - lambda * std
func (a AggregatedStats) RobustnessScore(lambda float64) float64 {
	return a.RewardMean - lambda*a.RewardStd
}
