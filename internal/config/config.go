package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Player kinds
const (
	PlayerETC           = "etc"
	PlayerUCB           = "ucb"
	PlayerAsymptoticUCB = "asymptotic_ucb"
	PlayerExp3          = "exp3"
	PlayerExp3IX        = "exp3ix"
)

// Environment kinds
const (
	EnvStochastic = "stochastic"
	EnvAdversary  = "adversary"
)

// PlayerKinds lists every supported player kind in report order
var PlayerKinds = []string{PlayerETC, PlayerUCB, PlayerAsymptoticUCB, PlayerExp3, PlayerExp3IX}

// Config is the root configuration structure
type Config struct {
	Seed        uint64       `yaml:"seed" json:"seed"`
	Horizon     int          `yaml:"horizon" json:"horizon"`
	NArms       int          `yaml:"n_arms" json:"n_arms"`
	Player      PlayerConfig `yaml:"player" json:"player"`
	Environment EnvConfig    `yaml:"environment" json:"environment"`
	Eval        EvalConfig   `yaml:"eval" json:"eval"`
	Logging     LogConfig    `yaml:"logging" json:"logging"`
}

// PlayerConfig selects and parameterizes the strategy
type PlayerConfig struct {
	Kind        string `yaml:"kind" json:"kind"`                   // etc|ucb|asymptotic_ucb|exp3|exp3ix
	PullEachArm int    `yaml:"pull_each_arm" json:"pull_each_arm"` // etc exploration budget per arm

	// ucb: delta = 1/confidence, defaults to 1/horizon^2.
	// exp3ix: optional target delta in (0, 1).
	Confidence *float64 `yaml:"confidence" json:"confidence,omitempty"`
}

// EnvConfig selects and parameterizes the reward process
type EnvConfig struct {
	Kind        string  `yaml:"kind" json:"kind"` // stochastic|adversary
	RangeMin    float64 `yaml:"range_min" json:"range_min"`
	RangeMax    float64 `yaml:"range_max" json:"range_max"`
	Sigma       float64 `yaml:"sigma" json:"sigma"`
	PullEachArm int     `yaml:"pull_each_arm" json:"pull_each_arm"` // adversary; defaults to the player's budget
	Seed        uint64  `yaml:"seed" json:"seed"`                   // defaults to the root seed
}

// EvalConfig defines multi-seed evaluation
type EvalConfig struct {
	Runs             int     `yaml:"runs" json:"runs"`
	BaseSeed         uint64  `yaml:"base_seed" json:"base_seed"`
	RobustnessLambda float64 `yaml:"robustness_lambda" json:"robustness_lambda"` // score = mean - lambda * std
}

// LogConfig defines logging and run artifacts
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	CSVPath     string `yaml:"csv_path" json:"csv_path"`
	JSONPath    string `yaml:"json_path" json:"json_path"`
	ChartPath   string `yaml:"chart_path" json:"chart_path"`
	MetricsPath string `yaml:"metrics_path" json:"metrics_path"`
	TracePath   string `yaml:"trace_path" json:"trace_path"`
}

// Load reads a YAML config file and returns a validated Config
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Seed == 0 {
		cfg.Seed = 1234
	}
	if cfg.Horizon == 0 {
		cfg.Horizon = 1000
	}
	if cfg.NArms == 0 {
		cfg.NArms = 10
	}
	if cfg.Player.Kind == "" {
		cfg.Player.Kind = PlayerETC
	}
	if cfg.Player.PullEachArm == 0 {
		cfg.Player.PullEachArm = 1
	}
	if cfg.Environment.Kind == "" {
		cfg.Environment.Kind = EnvStochastic
	}
	if cfg.Environment.RangeMin == 0 && cfg.Environment.RangeMax == 0 {
		cfg.Environment.RangeMax = 1
	}
	if cfg.Environment.Sigma == 0 {
		cfg.Environment.Sigma = 1
	}
	if cfg.Environment.PullEachArm == 0 {
		cfg.Environment.PullEachArm = cfg.Player.PullEachArm
	}
	if cfg.Eval.Runs == 0 {
		cfg.Eval.Runs = 10
	}
	if cfg.Eval.BaseSeed == 0 {
		cfg.Eval.BaseSeed = 1000
	}
	if cfg.Eval.RobustnessLambda == 0 {
		cfg.Eval.RobustnessLambda = 0.25
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.CSVPath == "" {
		cfg.Logging.CSVPath = "runs/run.csv"
	}
	if cfg.Logging.JSONPath == "" {
		cfg.Logging.JSONPath = "runs/run.jsonl"
	}
	if cfg.Logging.ChartPath == "" {
		cfg.Logging.ChartPath = "runs/rewards.html"
	}
	if cfg.Logging.MetricsPath == "" {
		cfg.Logging.MetricsPath = "runs/metrics.prom"
	}
	if cfg.Logging.TracePath == "" {
		cfg.Logging.TracePath = "runs/trace.json"
	}
}

// Validate checks every construction-time parameter so that building the
// player and environment cannot fail
func (c *Config) Validate() error {
	var errs []error
	if c.NArms <= 0 {
		errs = append(errs, fmt.Errorf("n_arms (= %d) must be positive", c.NArms))
	}
	if c.Horizon <= 0 {
		errs = append(errs, fmt.Errorf("horizon (= %d) must be positive", c.Horizon))
	}

	switch c.Player.Kind {
	case PlayerETC:
		if c.Player.PullEachArm < 1 {
			errs = append(errs, fmt.Errorf("player.pull_each_arm (= %d) must be at least 1", c.Player.PullEachArm))
		}
	case PlayerUCB:
		if conf := c.Player.Confidence; conf != nil && (!(*conf > 0) || math.IsInf(*conf, 1)) {
			errs = append(errs, fmt.Errorf("player.confidence (= %v) must be positive and finite", *conf))
		}
	case PlayerExp3IX:
		if conf := c.Player.Confidence; conf != nil && !(*conf > 0 && *conf < 1) {
			errs = append(errs, fmt.Errorf("player.confidence (= %v) must lie in (0, 1)", *conf))
		}
	case PlayerAsymptoticUCB, PlayerExp3:
	default:
		errs = append(errs, fmt.Errorf("unknown player.kind %q", c.Player.Kind))
	}

	switch c.Environment.Kind {
	case EnvStochastic:
		if c.Environment.RangeMax < c.Environment.RangeMin {
			errs = append(errs, fmt.Errorf("environment range [%v, %v) is empty",
				c.Environment.RangeMin, c.Environment.RangeMax))
		}
		if c.Environment.Sigma < 0 {
			errs = append(errs, fmt.Errorf("environment.sigma (= %v) must not be negative", c.Environment.Sigma))
		}
	case EnvAdversary:
		if c.Environment.PullEachArm < 1 {
			errs = append(errs, fmt.Errorf("environment.pull_each_arm (= %d) must be at least 1", c.Environment.PullEachArm))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown environment.kind %q", c.Environment.Kind))
	}

	if c.Eval.Runs <= 0 {
		errs = append(errs, fmt.Errorf("eval.runs (= %d) must be positive", c.Eval.Runs))
	}
	if c.Eval.RobustnessLambda < 0 {
		errs = append(errs, fmt.Errorf("eval.robustness_lambda (= %v) must not be negative", c.Eval.RobustnessLambda))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// UCBConfidence returns the UCB confidence, defaulting to 1/horizon^2
func (c *Config) UCBConfidence() float64 {
	if c.Player.Confidence != nil {
		return *c.Player.Confidence
	}
	h := float64(c.Horizon)
	return 1 / (h * h)
}

// EnvSeed returns the environment seed, defaulting to the root seed
func (c *Config) EnvSeed() uint64 {
	if c.Environment.Seed != 0 {
		return c.Environment.Seed
	}
	return c.Seed
}

// WithSeed returns a copy of the config using seed for the player and the
// environment
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	c.Environment.Seed = 0
	return c
}

// WithPlayer returns a copy of the config using another player kind.
// Confidence means something different to each kind, so it only survives
// when the kind stays the same.
func (c Config) WithPlayer(kind string) Config {
	if kind != c.Player.Kind {
		c.Player.Confidence = nil
	}
	c.Player.Kind = kind
	return c
}
