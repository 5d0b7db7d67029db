package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Zero(t, agg.NumRuns)
	assert.Zero(t, agg.HitRate())
}

func TestAggregateSingleRun(t *testing.T) {
	agg := Aggregate([]RunStats{{Player: "UCB", CumulativeReward: 42, BestArm: 1, NextArm: 1, BestArmShare: 0.5}})

	assert.Equal(t, 42.0, agg.RewardMean)
	assert.Zero(t, agg.RewardStd)
	assert.False(t, math.IsNaN(agg.RewardStd))
	assert.Equal(t, 1.0, agg.HitRate())
	assert.Equal(t, 0.5, agg.ShareMean)
}

func TestAggregate(t *testing.T) {
	runs := []RunStats{
		{Player: "ETC", CumulativeReward: 10, BestArm: 0, NextArm: 0, BestArmShare: 0.2},
		{Player: "ETC", CumulativeReward: 20, BestArm: 0, NextArm: 1, BestArmShare: 0.4},
		{Player: "ETC", CumulativeReward: 30, BestArm: 2, NextArm: 2, BestArmShare: 0.6},
		{Player: "ETC", CumulativeReward: 40, BestArm: 1, NextArm: 0, BestArmShare: 0.8},
	}
	agg := Aggregate(runs)

	assert.Equal(t, "ETC", agg.Player)
	assert.Equal(t, 4, agg.NumRuns)
	assert.InDelta(t, 25, agg.RewardMean, 1e-12)
	// sample standard deviation
	assert.InDelta(t, math.Sqrt(500.0/3), agg.RewardStd, 1e-12)
	assert.Equal(t, 10.0, agg.RewardMin)
	assert.Equal(t, 40.0, agg.RewardMax)
	assert.InDelta(t, 0.5, agg.ShareMean, 1e-12)
	assert.Equal(t, 2, agg.BestArmHits)
	assert.InDelta(t, 0.5, agg.HitRate(), 1e-12)
	assert.InDelta(t, 25-2*math.Sqrt(500.0/3), agg.RobustnessScore(2), 1e-12)
}
