package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"banditlab/internal/env"
	"banditlab/internal/eval"
	"banditlab/internal/logging"
	"banditlab/internal/protocol"
	"banditlab/internal/report"
)

var (
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Play one experiment and write its artifacts",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Run the configured experiment over eval.runs seeds",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Sweep every player against the configured environment and chart the results",
		Args:  cobra.NoArgs,
		RunE:  runCompare,
	}
	replayCmd = &cobra.Command{
		Use:   "replay [trace.json]",
		Short: "Check that a saved trace reproduces exactly",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
)

func setup(cmd *cobra.Command) (*eval.Evaluator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return eval.NewEvaluator(cfg, log), nil
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	ev, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := ev.Config()

	metrics := logging.NewMetrics()
	stats, tr := ev.RunWithTrace(*cfg, metrics.Observer(cfg.Player.Kind))
	metrics.RunFinished(cfg.Player.Kind)

	out := report.NewPrinter(os.Stdout, useColor())
	out.Result(tr.Result)
	var locations []float64
	if st, ok := eval.NewEnvironment(cfg).(*env.Stochastic); ok {
		locations = st.Locations()
	}
	out.Arms(tr.ArmStats(), stats.BestArm, locations)

	if err := writeRunLog(cfg.Logging.CSVPath, cfg.Logging.JSONPath, cfg.Environment.Kind, []eval.RunStats{stats}); err != nil {
		return err
	}
	if err := tr.Save(cfg.Logging.TracePath); err != nil {
		return fmt.Errorf("saving trace: %w", err)
	}
	series := []logging.Series{{Name: stats.Player, Curve: tr.CumulativeRewards()}}
	if err := logging.SaveRewardChart(cfg.Logging.ChartPath, "Cumulative reward", cfg.Environment.Kind, series); err != nil {
		return err
	}
	if err := metrics.WriteTextfile(cfg.Logging.MetricsPath); err != nil {
		return err
	}

	fmt.Printf("Run %s saved to %s\n", stats.RunID, cfg.Logging.TracePath)
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ev, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := ev.Config()

	metrics := logging.NewMetrics()
	observe := metrics.Observer(cfg.Player.Kind)
	runs, agg := ev.Sweep(observe)
	for range runs {
		metrics.RunFinished(cfg.Player.Kind)
	}

	out := report.NewPrinter(os.Stdout, useColor())
	out.Runs(runs)
	fmt.Println()
	out.Sweep(cfg.Eval.RobustnessLambda, agg)

	if err := writeRunLog(cfg.Logging.CSVPath, cfg.Logging.JSONPath, cfg.Environment.Kind, runs); err != nil {
		return err
	}
	return metrics.WriteTextfile(cfg.Logging.MetricsPath)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	ev, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := ev.Config()

	results := ev.Compare()
	aggs := make([]eval.AggregatedStats, len(results))
	series := make([]logging.Series, len(results))
	for i, r := range results {
		aggs[i] = r.Stats
		series[i] = logging.Series{Name: r.Stats.Player, Curve: r.Curve}
	}

	report.NewPrinter(os.Stdout, useColor()).Sweep(cfg.Eval.RobustnessLambda, aggs...)

	subtitle := fmt.Sprintf("%s, %d arms, mean over %d seeds", cfg.Environment.Kind, cfg.NArms, cfg.Eval.Runs)
	if err := logging.SaveRewardChart(cfg.Logging.ChartPath, "Cumulative reward", subtitle, series); err != nil {
		return err
	}
	fmt.Printf("Chart saved to %s\n", cfg.Logging.ChartPath)
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	ev, err := setup(cmd)
	if err != nil {
		return err
	}

	tr, err := protocol.LoadTrace(args[0])
	if err != nil {
		return fmt.Errorf("loading trace: %w", err)
	}
	if err := ev.Replay(tr); err != nil {
		return err
	}

	out := report.NewPrinter(os.Stdout, useColor())
	out.Result(tr.Result)
	fmt.Printf("Replay of %s matches all %d rounds\n", tr.RunID, len(tr.Arms))
	return nil
}

func writeRunLog(csvPath, jsonPath, environment string, runs []eval.RunStats) error {
	logger, err := logging.NewLogger(csvPath, jsonPath)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	for _, r := range runs {
		if err := logger.LogRun(environment, r); err != nil {
			logger.Close()
			return err
		}
	}
	return logger.Close()
}
