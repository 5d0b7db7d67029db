package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"banditlab/internal/config"
)

var (
	configPath string
	horizon    int
	seed       uint64
	playerKind string
	logLevel   string
	noColor    bool

	rootCmd = &cobra.Command{
		Use:   "bandit",
		Short: "Run multi-armed bandit experiments",
		Long: `bandit plays bandit strategies (ETC, UCB, asymptotically optimal UCB,
EXP3, EXP3-IX) against stochastic or adversarial environments and reports
the collected reward.`,
		SilenceUsage: true,
	}
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file (default $BANDIT_CONFIG or built-in defaults)")
	pf.IntVar(&horizon, "horizon", 0, "number of rounds, overrides the config")
	pf.Uint64Var(&seed, "seed", 0, "random seed, overrides the config")
	pf.StringVar(&playerKind, "player", "", "player kind: "+strings.Join(config.PlayerKinds, "|"))
	pf.StringVar(&logLevel, "log-level", "", "debug|info|warn|error (default $BANDIT_LOG_LEVEL or config)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd, sweepCmd, compareCmd, replayCmd)
}

// loadConfig resolves the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("BANDIT_CONFIG")
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("seed") {
		*cfg = cfg.WithSeed(seed)
	}
	if flags.Changed("player") {
		cfg.Player.Kind = playerKind
	}
	switch {
	case flags.Changed("log-level"):
		cfg.Logging.Level = logLevel
	case path == "" && os.Getenv("BANDIT_LOG_LEVEL") != "":
		cfg.Logging.Level = os.Getenv("BANDIT_LOG_LEVEL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the structured logger for the configured level
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// useColor reports whether stdout is a terminal that wants colors
func useColor() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
