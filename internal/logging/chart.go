package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// maxChartPoints caps the points per series; longer curves are sampled
const maxChartPoints = 500

// Series is one named cumulative-reward curve, indexed by round-1
type Series struct {
	Name  string
	Curve []float64
}

// RenderRewardChart writes an HTML line chart of the given curves.
// All series share the x axis of the longest one.
func RenderRewardChart(w io.Writer, title, subtitle string, series []Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to chart")
	}

	horizon := 0
	for _, s := range series {
		horizon = max(horizon, len(s.Curve))
	}
	rounds := sampleRounds(horizon, maxChartPoints)

	xAxis := make([]string, len(rounds))
	for i, r := range rounds {
		xAxis[i] = strconv.Itoa(r)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeInfographic,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
	)
	line.SetXAxis(xAxis)

	for _, s := range series {
		data := make([]opts.LineData, 0, len(rounds))
		for _, r := range rounds {
			if r > len(s.Curve) {
				break
			}
			data = append(data, opts.LineData{Value: s.Curve[r-1]})
		}
		line.AddSeries(s.Name, data)
	}

	return line.Render(w)
}

// SaveRewardChart renders the chart into a file
func SaveRewardChart(path, title, subtitle string, series []Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderRewardChart(f, title, subtitle, series); err != nil {
		f.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	return f.Close()
}

// sampleRounds returns at most limit 1-indexed rounds spread evenly over
// 1..horizon, always including the last round
func sampleRounds(horizon, limit int) []int {
	if horizon <= limit {
		out := make([]int, horizon)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	out := make([]int, limit)
	step := float64(horizon) / float64(limit)
	for i := range out {
		out[i] = int(float64(i+1) * step)
	}
	out[limit-1] = horizon
	return out
}
