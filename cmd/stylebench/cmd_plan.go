package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/restylelab/stylebench/internal/capture"
	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/projectconfig"
)

var planVerify bool

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <spec.yaml>",
		Short: "Preview a benchmark run without calling any judges",
		Long: `Preview a benchmark run without calling any judges.

Validates the spec, loads the image-pair manifest, and reports which
pairs, rubrics, and judges a run would use. No API calls are made.`,
		Args: cobra.ExactArgs(1),
		RunE: planCommandE,
	}

	cmd.Flags().StringVar(&rubricsDir, "rubrics-dir", "", "Directory of per-style rubric YAML files")
	cmd.Flags().BoolVar(&planVerify, "verify-files", true, "Check that manifest images exist on disk")

	return cmd
}

func planCommandE(cmd *cobra.Command, args []string) error {
	specPath := args[0]

	spec, err := models.LoadRunSpec(specPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	projectCfg, err := projectconfig.Load(filepath.Dir(specPath))
	if err != nil {
		return err
	}

	manifestPath := spec.ResolveManifestPath(specPath)
	pairs, err := capture.LoadManifest(manifestPath, capture.Options{
		ImageRoot:   spec.Capture.ImageRoot,
		Styles:      spec.Capture.Styles,
		VerifyFiles: planVerify,
	})
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	rubrics, err := loadRubrics(projectCfg, specPath)
	if err != nil {
		return err
	}

	fmt.Printf("Benchmark: %s\n", spec.Name)
	if spec.Description != "" {
		fmt.Printf("  %s\n", spec.Description)
	}
	fmt.Println()
	fmt.Printf("Manifest: %s (%d pairs)\n", manifestPath, len(pairs))

	styles := map[string]int{}
	for _, pair := range pairs {
		styles[pair.Style]++
	}
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	fmt.Println("Styles:")
	for _, name := range names {
		r, custom := rubrics.Lookup(name)
		source := "generic rubric"
		if custom {
			source = fmt.Sprintf("custom rubric (%d assertions, max %.1f)", len(r.Assertions), r.MaxPossible())
		}
		fmt.Printf("  %-20s %d pair(s), %s\n", name, styles[name], source)
	}

	fmt.Println()
	fmt.Println("Judges:")
	fmt.Printf("  technical:  %s (%s)\n", judgeLabel(spec.Judges.Technical), spec.Judges.Technical.Kind)
	fmt.Printf("  preference: %s (%s)\n", judgeLabel(spec.Judges.Preference), spec.Judges.Preference.Kind)

	fmt.Println()
	fmt.Printf("Synthesis weights: feasibility %.2f, preference %.2f\n",
		spec.Synthesis.FeasibilityWeight, spec.Synthesis.PreferenceWeight)
	fmt.Printf("Workers: %d, max attempts: %d, timeout: %ds\n",
		spec.Evaluation.Workers, spec.Evaluation.MaxAttempts, spec.Evaluation.TimeoutSec)
	if spec.Comparison.BaselineRunID != "" {
		fmt.Printf("Baseline: %s (epsilon %.1f pp)\n", spec.Comparison.BaselineRunID, spec.Comparison.Epsilon)
	} else {
		fmt.Printf("Baseline: latest prior run (epsilon %.1f pp)\n", spec.Comparison.Epsilon)
	}

	estimate := len(pairs) + 1
	fmt.Println()
	fmt.Printf("A run would make roughly %d judge request(s): %d evaluations plus 1 ranking over %d style(s).\n",
		estimate, len(pairs), len(names))

	return nil
}

func judgeLabel(cfg models.JudgeConfig) string {
	if cfg.ModelID != "" {
		return cfg.ModelID
	}
	return "default model"
}
