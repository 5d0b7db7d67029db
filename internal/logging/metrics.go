package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"banditlab/internal/protocol"
)

const namespace = "bandit"

// Metrics counts rounds, rewards and pulls in a private registry so that
// every invocation exports only its own experiments
type Metrics struct {
	registry *prometheus.Registry

	rounds     *prometheus.CounterVec
	reward     *prometheus.CounterVec
	pulls      *prometheus.CounterVec
	rewards    *prometheus.HistogramVec
	cumulative *prometheus.GaugeVec
	runs       *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Rounds played.",
		}, []string{"player"}),
		reward: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_total",
			Help:      "Sum of observed rewards.",
		}, []string{"player"}),
		pulls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arm_pulls_total",
			Help:      "Pulls per arm.",
		}, []string{"player", "arm"}),
		rewards: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reward",
			Help:      "Distribution of observed rewards.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"player"}),
		cumulative: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cumulative_reward",
			Help:      "Cumulative reward of the current or last run.",
		}, []string{"player"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs.",
		}, []string{"player"}),
	}
	m.registry.MustRegister(m.rounds, m.reward, m.pulls, m.rewards, m.cumulative, m.runs)
	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observer returns a round observer that records into the metrics under the
// given player label. The cumulative gauge restarts at round 1.
func (m *Metrics) Observer(player string) protocol.RoundFunc {
	rounds := m.rounds.WithLabelValues(player)
	reward := m.reward.WithLabelValues(player)
	hist := m.rewards.WithLabelValues(player)
	cumulative := m.cumulative.WithLabelValues(player)

	return func(round, arm int, r float64) {
		if round == 1 {
			cumulative.Set(0)
		}
		rounds.Inc()
		reward.Add(r)
		hist.Observe(r)
		cumulative.Add(r)
		m.pulls.WithLabelValues(player, strconv.Itoa(arm)).Inc()
	}
}

// RunFinished counts a finished run
func (m *Metrics) RunFinished(player string) {
	m.runs.WithLabelValues(player).Inc()
}

// WriteTextfile writes all metrics in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
