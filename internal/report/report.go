package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"

	"banditlab/internal/arm"
	"banditlab/internal/eval"
	"banditlab/internal/protocol"
)

const rule = "----------"

// Printer renders experiment results to a terminal
type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

// NewPrinter creates a printer; colors are emitted only when color is true
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, au: aurora.NewAurora(color)}
}

// Result prints the outcome of one experiment
func (p *Printer) Result(res protocol.Result) {
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "%s %s\n", p.au.Bold("Result:"), p.au.Cyan(res.Player))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "* Total reward collected: %v\n", p.au.Green(res.CumulativeReward))
	fmt.Fprintf(p.w, "* Best arm in hindsight %v\n", p.au.Bold(res.BestArm))

	next := p.au.Green(res.NextArm)
	if res.NextArm != res.BestArm {
		next = p.au.Red(res.NextArm)
	}
	fmt.Fprintf(p.w, "* Player chooses arm %v in the next round\n", next)
	fmt.Fprintln(p.w, rule)
}

// Arms prints a per-arm table of pulls, reward and empirical mean followed by
// the totals. When locations is non-nil the true mean of each arm is shown too.
func (p *Printer) Arms(arms *arm.Set, best int, locations []float64) {
	header := fmt.Sprintf("%4s %8s %12s %8s", "arm", "pulls", "reward", "mean")
	if locations != nil {
		header += fmt.Sprintf(" %8s", "true")
	}
	fmt.Fprintf(p.w, "%s\n", p.au.Bold(header))
	for i := 0; i < arms.Len(); i++ {
		st := arms.At(i)
		mean := "-"
		if m, ok := st.Mean(); ok {
			mean = fmt.Sprintf("%.4f", m)
		}
		line := fmt.Sprintf("%4d %8d %12.4f %8s", i, st.Pulls(), st.CumulativeReward(), mean)
		if locations != nil {
			line += fmt.Sprintf(" %8.4f", locations[i])
		}
		if i == best {
			fmt.Fprintf(p.w, "%s %s\n", p.au.Yellow(line), p.au.Faint("(best)"))
			continue
		}
		fmt.Fprintln(p.w, line)
	}
	fmt.Fprintf(p.w, "%4s %8d %12.4f\n", "all", arms.TotalPulls(), arms.CumulativeReward())
}

// Sweep prints one summary line per aggregated player. The robust column is
// mean - lambda * std; the highest one is highlighted.
func (p *Printer) Sweep(lambda float64, aggs ...eval.AggregatedStats) {
	header := fmt.Sprintf("%-28s %5s %10s %10s %10s %10s %10s %8s",
		"player", "runs", "mean", "std", "min", "max", "robust", "hit")
	fmt.Fprintf(p.w, "%s\n", p.au.Bold(header))
	fmt.Fprintln(p.w, strings.Repeat("-", len(header)))

	best := -1
	for i, a := range aggs {
		if best < 0 || a.RobustnessScore(lambda) > aggs[best].RobustnessScore(lambda) {
			best = i
		}
	}
	for i, a := range aggs {
		line := fmt.Sprintf("%-28s %5d %10.2f %10.2f %10.2f %10.2f %10.2f %7.0f%%",
			a.Player, a.NumRuns, a.RewardMean, a.RewardStd, a.RewardMin, a.RewardMax,
			a.RobustnessScore(lambda), 100*a.HitRate())
		if i == best && len(aggs) > 1 {
			fmt.Fprintf(p.w, "%s\n", p.au.Green(line))
			continue
		}
		fmt.Fprintln(p.w, line)
	}
}

// Runs prints a line per run of a sweep
func (p *Printer) Runs(runs []eval.RunStats) {
	for _, r := range runs {
		mark := p.au.Green("hit")
		if !r.HitBestArm() {
			mark = p.au.Red("miss")
		}
		fmt.Fprintf(p.w, "  seed %6d | reward %10.2f | best %3d | next %3d | %v\n",
			r.Seed, r.CumulativeReward, r.BestArm, r.NextArm, mark)
	}
}
