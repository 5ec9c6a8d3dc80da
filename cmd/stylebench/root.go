package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stylebench",
		Short: "Stylebench - LLM-judged benchmarks for image style transfer",
		Long: `Stylebench grades AI image style transfers with LLM judges.

A technical judge scores each original/styled pair against per-style
assertions, a preference judge ranks the styles holistically, and the two
rankings are blended into a final ordering. Runs are archived so later
runs can be checked for regressions against a baseline.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newPlanCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
