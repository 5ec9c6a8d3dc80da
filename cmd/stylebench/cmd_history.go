package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/restylelab/stylebench/internal/models"
)

var historyLimit int

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived benchmark runs",
		Long:  `List archived benchmark runs, newest first.`,
		Args:  cobra.NoArgs,
		RunE:  historyCommandE,
	}

	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "Directory for archived runs (default from .stylebench.yaml)")
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of runs to show")

	return cmd
}

func historyCommandE(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}

	runs, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	if historyLimit > 0 && len(runs) > historyLimit {
		runs = runs[:historyLimit]
	}

	fmt.Printf("%-38s %-12s %-10s %-20s %s\n", "RUN ID", "AGE", "PHASE", "WINNER", "LABEL")
	for _, run := range runs {
		winner := run.Winner
		if winner == "" {
			winner = "-"
		}
		label := run.Label
		if label == "" {
			label = "-"
		}
		phase := string(run.Phase)
		if run.Comparison != nil && run.Comparison.Verdict == models.VerdictRegressionDetected {
			phase += " (!)"
		}
		fmt.Printf("%-38s %-12s %-10s %-20s %s\n",
			run.RunID, formatAge(run.StartedAt), phase, winner, label)
	}

	if historyLimit > 0 {
		fmt.Printf("\nShowing %d run(s). Use --limit to see more.\n", len(runs))
	}
	return nil
}

func formatAge(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
