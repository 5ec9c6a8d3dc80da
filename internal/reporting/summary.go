// Package reporting renders run records for humans and CI: console
// summaries, markdown reports, and JUnit XML.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/restylelab/stylebench/internal/models"
)

// InterpretPercentage returns a plain-language label for a percentage
// score.
func InterpretPercentage(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent (90%+)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretVerdict explains a comparison verdict.
func InterpretVerdict(v models.Verdict) string {
	switch v {
	case models.VerdictRegressionDetected:
		return "At least one style scored worse than the baseline. Investigate before shipping."
	case models.VerdictImproved:
		return "Scores improved over the baseline with no regressions."
	default:
		return "Scores are within noise of the baseline."
	}
}

// FormatSummaryReport produces the console report for a finished run.
func FormatSummaryReport(run *models.RunRecord) string {
	var b strings.Builder

	b.WriteString("=== Run Summary ===\n\n")
	fmt.Fprintf(&b, "Run:    %s\n", run.RunID)
	if run.Label != "" {
		fmt.Fprintf(&b, "Label:  %s\n", run.Label)
	}
	fmt.Fprintf(&b, "Pairs:  %d evaluated, %d failed\n", len(run.Evaluations), len(run.Failures))

	if len(run.Rankings) > 0 {
		b.WriteString("\nFinal Ranking:\n")
		for _, entry := range run.Rankings {
			marker := " "
			if entry.Rank == 1 {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %d. %-20s technical=%d preference=%d blended=%.2f\n",
				marker, entry.Rank, entry.Style, entry.TechnicalRank, entry.PreferenceRank, entry.FinalScore)
		}
	}

	averages := run.StyleAverages()
	if len(averages) > 0 {
		styles := make([]string, 0, len(averages))
		for s := range averages {
			styles = append(styles, s)
		}
		sort.Strings(styles)

		b.WriteString("\nPer-Style Scores:\n")
		for _, style := range styles {
			pct := averages[style]
			fmt.Fprintf(&b, "  %-20s %6.2f%% (%s) - %s\n",
				style, pct, models.GradeFor(pct), InterpretPercentage(pct))
		}
	}

	if len(run.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range run.Failures {
			fmt.Fprintf(&b, "  ✗ %s (%s): %s\n", f.StyledImage, f.Style, f.Err)
		}
	}

	if run.Comparison != nil {
		b.WriteString("\n")
		b.WriteString(FormatComparisonReport(run.Comparison))
	}

	return b.String()
}

// FormatComparisonReport renders a baseline comparison.
func FormatComparisonReport(cmp *models.ComparisonResult) string {
	var b strings.Builder

	b.WriteString("=== Baseline Comparison ===\n\n")
	fmt.Fprintf(&b, "Baseline:  %s\n", cmp.BaselineRunID)
	fmt.Fprintf(&b, "Candidate: %s\n", cmp.CandidateRunID)
	fmt.Fprintf(&b, "Epsilon:   %.2f percentage points\n\n", cmp.Epsilon)

	for _, d := range cmp.Deltas {
		switch d.Classification {
		case models.ClassAdded:
			fmt.Fprintf(&b, "  + %-20s %-10s (new at %.2f%%)\n", d.Style, d.Classification, d.CandidateScore)
		case models.ClassRemoved:
			fmt.Fprintf(&b, "  - %-20s %-10s (was %.2f%%)\n", d.Style, d.Classification, d.BaselineScore)
		default:
			fmt.Fprintf(&b, "    %-20s %-10s %.2f%% -> %.2f%% (%+.2f)\n",
				d.Style, d.Classification, d.BaselineScore, d.CandidateScore, d.Delta)
		}
	}

	fmt.Fprintf(&b, "\nVerdict: %s\n%s\n", cmp.Verdict, InterpretVerdict(cmp.Verdict))
	return b.String()
}
