package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"banditlab/internal/eval"
)

// Logger writes one CSV row and one JSON line per finished run
type Logger struct {
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	initialized bool
}

// NewLogger creates a new logger
func NewLogger(csvPath, jsonPath string) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

var csvHeader = []string{
	"run_id", "player", "environment", "seed", "horizon",
	"cumulative_reward", "best_arm", "next_arm", "most_pulled", "best_arm_share",
}

// Init creates the log files and writes the CSV header
func (l *Logger) Init() error {
	var err error

	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)
	if err := l.csvWriter.Write(csvHeader); err != nil {
		return err
	}

	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close flushes and closes all log files
func (l *Logger) Close() error {
	var firstErr error
	if l.csvWriter != nil {
		l.csvWriter.Flush()
		firstErr = l.csvWriter.Error()
	}
	if l.csvFile != nil {
		if err := l.csvFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.jsonFile != nil {
		if err := l.jsonFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.initialized = false
	return firstErr
}

// RunSummary is the JSON line written for each run
type RunSummary struct {
	RunID            string  `json:"run_id"`
	Player           string  `json:"player"`
	Environment      string  `json:"environment"`
	Seed             uint64  `json:"seed"`
	Horizon          int     `json:"horizon"`
	CumulativeReward float64 `json:"cumulative_reward"`
	BestArm          int     `json:"best_arm"`
	NextArm          int     `json:"next_arm"`
	MostPulled       int     `json:"most_pulled"`
	BestArmShare     float64 `json:"best_arm_share"`
}

// LogRun appends a run to both files
func (l *Logger) LogRun(environment string, r eval.RunStats) error {
	if !l.initialized {
		return fmt.Errorf("logger not initialized")
	}

	summary := RunSummary{
		RunID:            r.RunID,
		Player:           r.Player,
		Environment:      environment,
		Seed:             r.Seed,
		Horizon:          r.Horizon,
		CumulativeReward: r.CumulativeReward,
		BestArm:          r.BestArm,
		NextArm:          r.NextArm,
		MostPulled:       r.MostPulled,
		BestArmShare:     r.BestArmShare,
	}

	row := []string{
		summary.RunID,
		summary.Player,
		summary.Environment,
		strconv.FormatUint(summary.Seed, 10),
		strconv.Itoa(summary.Horizon),
		strconv.FormatFloat(summary.CumulativeReward, 'f', 4, 64),
		strconv.Itoa(summary.BestArm),
		strconv.Itoa(summary.NextArm),
		strconv.Itoa(summary.MostPulled),
		strconv.FormatFloat(summary.BestArmShare, 'f', 4, 64),
	}
	if err := l.csvWriter.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	line, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if _, err := l.jsonFile.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write json line: %w", err)
	}
	return nil
}
