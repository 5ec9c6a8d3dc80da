package reporting

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/statistics"
)

// FormatMarkdownReport renders a run as a markdown document suitable for
// attaching to a PR or archiving next to the run record.
func FormatMarkdownReport(run *models.RunRecord) string {
	var b strings.Builder

	title := run.Label
	if title == "" {
		title = run.RunID
	}
	fmt.Fprintf(&b, "# Style Benchmark: %s\n\n", title)
	fmt.Fprintf(&b, "- **Run ID:** `%s`\n", run.RunID)
	fmt.Fprintf(&b, "- **Started:** %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Pairs evaluated:** %d\n", len(run.Evaluations))
	fmt.Fprintf(&b, "- **Failures:** %d\n", len(run.Failures))
	if run.Winner != "" {
		fmt.Fprintf(&b, "- **Winner:** %s\n", run.Winner)
	}
	b.WriteString("\n")

	if len(run.Rankings) > 0 {
		b.WriteString("## Final Ranking\n\n")
		b.WriteString("| Rank | Style | Technical | Preference | Blended |\n")
		b.WriteString("|------|-------|-----------|------------|--------|\n")
		for _, e := range run.Rankings {
			fmt.Fprintf(&b, "| %d | %s | %d | %d | %.2f |\n",
				e.Rank, e.Style, e.TechnicalRank, e.PreferenceRank, e.FinalScore)
		}
		b.WriteString("\n")
	}

	averages := run.StyleAverages()
	if len(averages) > 0 {
		styles := make([]string, 0, len(averages))
		for s := range averages {
			styles = append(styles, s)
		}
		sort.Strings(styles)

		scores := stylePercentages(run)

		b.WriteString("## Scores by Style\n\n")
		b.WriteString("| Style | Pairs | Average | StdDev | 95% CI | Grade |\n")
		b.WriteString("|-------|-------|---------|--------|--------|-------|\n")
		for _, style := range styles {
			pct := averages[style]
			fmt.Fprintf(&b, "| %s | %d | %.2f%% | %s | %s | %s |\n",
				style, len(scores[style]), pct, formatStdDev(scores[style]),
				formatCI(scores[style]), models.GradeFor(pct))
		}
		b.WriteString("\n")
	}

	if len(run.Evaluations) > 0 {
		b.WriteString("## Evaluations\n\n")
		for _, e := range run.Evaluations {
			fmt.Fprintf(&b, "### %s - %.2f%% (%s)\n\n", e.StyledImage, e.Percentage, e.Grade)
			b.WriteString("| Dimension | Passed | Confidence | Raw | Weighted |\n")
			b.WriteString("|-----------|--------|------------|-----|----------|\n")
			for _, d := range e.Dimensions {
				fmt.Fprintf(&b, "| %s | %d/%d | %.1f | %.2f | %.2f |\n",
					d.Dimension, d.Passed, d.Total, d.AvgConfidence, d.RawScore, d.WeightedScore)
			}
			b.WriteString("\n")
		}
	}

	if len(run.Failures) > 0 {
		b.WriteString("## Failures\n\n")
		for _, f := range run.Failures {
			fmt.Fprintf(&b, "- `%s` (%s): %s\n", f.StyledImage, f.Style, f.Err)
		}
		b.WriteString("\n")
	}

	if run.Comparison != nil {
		cmp := run.Comparison
		b.WriteString("## Baseline Comparison\n\n")
		fmt.Fprintf(&b, "Compared against `%s` with epsilon %.2fpp.\n\n", cmp.BaselineRunID, cmp.Epsilon)
		b.WriteString("| Style | Baseline | Candidate | Delta | Classification |\n")
		b.WriteString("|-------|----------|-----------|-------|----------------|\n")
		for _, d := range cmp.Deltas {
			fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% | %+.2f | %s |\n",
				d.Style, d.BaselineScore, d.CandidateScore, d.Delta, d.Classification)
		}
		fmt.Fprintf(&b, "\n**Verdict:** %s\n", cmp.Verdict)
	}

	return b.String()
}

// stylePercentages groups per-pair percentages by style.
func stylePercentages(run *models.RunRecord) map[string][]float64 {
	out := map[string][]float64{}
	for _, e := range run.Evaluations {
		out[e.Style] = append(out[e.Style], e.Percentage)
	}
	return out
}

// formatStdDev renders the sample standard deviation, or a dash when a
// style has a single pair.
func formatStdDev(percentages []float64) string {
	if len(percentages) < 2 {
		return "—"
	}
	return fmt.Sprintf("%.2f", statistics.StdDev(percentages))
}

// formatCI renders a bootstrap confidence interval, or a dash when a style
// has too few pairs for an interval to mean anything.
func formatCI(percentages []float64) string {
	ci := statistics.BootstrapCI(percentages, 0.95)
	if ci.NumBootstraps == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f–%.1f%%", ci.Lower, ci.Upper)
}

// WriteMarkdownReport writes the markdown report to a file.
func WriteMarkdownReport(run *models.RunRecord, path string) error {
	return os.WriteFile(path, []byte(FormatMarkdownReport(run)), 0644)
}
