package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banditlab/internal/protocol"
)

func writeConfig(t *testing.T, dir, player string, extra ...string) string {
	t.Helper()
	yml := fmt.Sprintf(`
seed: 3
horizon: 200
n_arms: 4
player:
  kind: %s
eval:
  runs: 2
logging:
  level: error
  csv_path: %[2]s/run.csv
  json_path: %[2]s/run.jsonl
  chart_path: %[2]s/rewards.html
  metrics_path: %[2]s/metrics.prom
  trace_path: %[2]s/trace.json
`, player, dir) + strings.Join(extra, "")
	path := filepath.Join(dir, "bandit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	return path
}

// resetFlags puts every flag of cmd and its children back to its default so
// that one execution does not see the flags of the previous one.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue), f.Name)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(t, c)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(t, rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))

	log, err = newLogger("warn")
	require.NoError(t, err)
	assert.False(t, log.Enabled(t.Context(), slog.LevelInfo))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestRunThenReplay(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "exp3ix")

	require.NoError(t, execute(t, "run", "--config", cfgPath, "--horizon", "150", "--no-color"))

	for _, name := range []string{"run.csv", "run.jsonl", "rewards.html", "metrics.prom", "trace.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	tracePath := filepath.Join(dir, "trace.json")
	tr, err := protocol.LoadTrace(tracePath)
	require.NoError(t, err)
	assert.Equal(t, 150, tr.Config.Horizon)
	assert.Len(t, tr.Arms, 150)
	assert.Equal(t, "EXP3-IX", tr.Result.Player)

	assert.NoError(t, execute(t, "replay", tracePath, "--config", cfgPath, "--no-color"))
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "etc")
	tracePath := filepath.Join(dir, "trace.json")

	require.NoError(t, execute(t, "run", "--config", cfgPath, "--horizon", "120", "--no-color"))
	tr, err := protocol.LoadTrace(tracePath)
	require.NoError(t, err)
	assert.Equal(t, 120, tr.Config.Horizon)

	require.NoError(t, execute(t, "run", "--config", cfgPath))
	tr, err = protocol.LoadTrace(tracePath)
	require.NoError(t, err)
	assert.Equal(t, 200, tr.Config.Horizon)
	assert.False(t, noColor)
}

func TestSeedFlagReseedsEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "ucb", "environment:\n  seed: 77\n")

	require.NoError(t, execute(t, "run", "--config", cfgPath, "--seed", "5", "--no-color"))

	tr, err := protocol.LoadTrace(filepath.Join(dir, "trace.json"))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), tr.Config.Seed)
	assert.Equal(t, uint64(5), tr.Config.EnvSeed())
}

func TestSweepAndCompare(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "ucb")

	require.NoError(t, execute(t, "sweep", "--config", cfgPath, "--no-color"))
	assert.FileExists(t, filepath.Join(dir, "run.csv"))

	require.NoError(t, execute(t, "compare", "--config", cfgPath, "--no-color"))
	assert.FileExists(t, filepath.Join(dir, "rewards.html"))
}

func TestInvalidConfigIsReported(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "greedy")

	err := execute(t, "run", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greedy")
}

func TestReplayNeedsTrace(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "etc")

	assert.Error(t, execute(t, "replay", filepath.Join(dir, "missing.json"), "--config", cfgPath))
}
