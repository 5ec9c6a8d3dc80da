package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/restylelab/stylebench/internal/comparison"
	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/projectconfig"
	"github.com/restylelab/stylebench/internal/runstore"
)

var compareEpsilon float64

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <baseline-run-id> <candidate-run-id>",
		Short: "Compare two archived runs",
		Long: `Compare two archived runs style by style.

Per-style average percentages are diffed against the epsilon threshold.
Any regressed style makes the overall verdict REGRESSION_DETECTED and
the command exits with code 1.`,
		Args: cobra.ExactArgs(2),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "Directory for archived runs (default from .stylebench.yaml)")
	cmd.Flags().Float64Var(&compareEpsilon, "epsilon", -1, "Regression threshold in percentage points")

	return cmd
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}

	baseline, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load baseline run: %w", err)
	}
	candidate, err := store.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load candidate run: %w", err)
	}

	result := comparison.Compare(baseline, candidate, compareEpsilon)

	fmt.Printf("Baseline:  %s", baseline.RunID)
	if baseline.Label != "" {
		fmt.Printf(" (%s)", baseline.Label)
	}
	fmt.Println()
	fmt.Printf("Candidate: %s", candidate.RunID)
	if candidate.Label != "" {
		fmt.Printf(" (%s)", candidate.Label)
	}
	fmt.Println()
	fmt.Println()

	printComparison(result)

	if result.Verdict == models.VerdictRegressionDetected {
		return &RegressionError{
			Message: fmt.Sprintf("%d style(s) regressed against baseline %s",
				len(result.Regressions()), baseline.RunID),
		}
	}
	return nil
}

func printComparison(result *models.ComparisonResult) {
	fmt.Printf("Comparison (epsilon: %.1f pp)\n", result.Epsilon)
	for _, delta := range result.Deltas {
		switch delta.Classification {
		case models.ClassAdded:
			fmt.Printf("  + %-20s %.2f%% (new style)\n", delta.Style, delta.CandidateScore)
		case models.ClassRemoved:
			fmt.Printf("  - %-20s %.2f%% (removed)\n", delta.Style, delta.BaselineScore)
		default:
			fmt.Printf("  %s %-20s %.2f%% -> %.2f%% (%+.2f pp)\n",
				symbolFor(delta.Classification), delta.Style,
				delta.BaselineScore, delta.CandidateScore, delta.Delta)
		}
	}
	fmt.Println()
	fmt.Printf("Verdict: %s\n", result.Verdict)
}

func symbolFor(c models.Classification) string {
	switch c {
	case models.ClassImproved:
		return "↑"
	case models.ClassRegressed:
		return "↓"
	default:
		return "="
	}
}

// openHistoryStore resolves the runs directory from the flag or project
// config relative to the current directory.
func openHistoryStore() (*runstore.Store, error) {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return nil, err
	}
	dir := runsDir
	if dir == "" {
		dir = cfg.Paths.Runs
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Clean(dir)
	}
	return runstore.New(dir)
}
