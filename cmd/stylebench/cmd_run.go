package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/restylelab/stylebench/internal/cache"
	"github.com/restylelab/stylebench/internal/judge"
	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/orchestration"
	"github.com/restylelab/stylebench/internal/projectconfig"
	"github.com/restylelab/stylebench/internal/reporting"
	"github.com/restylelab/stylebench/internal/rubric"
	"github.com/restylelab/stylebench/internal/runstore"
	"github.com/restylelab/stylebench/internal/spinner"
)

var (
	runLabel      string
	runBaseline   string
	runsDir       string
	rubricsDir    string
	verbose       bool
	skipVerify    bool
	markdownPath  string
	junitPath     string
	workersFlag   int
	epsilonFlag   float64
	technicalOnly string
	preferenceMod string
	cacheDir      string
	clearCache    bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <spec.yaml>",
		Short: "Run a style transfer benchmark",
		Long: `Run a style transfer benchmark from a spec file.

The spec defines the image-pair manifest, the two judges, and how their
rankings are blended. Results are archived under the runs directory and,
when a previous run exists, compared against it for regressions.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runLabel, "label", "l", "", "Human-readable label for this run")
	cmd.Flags().StringVar(&runBaseline, "baseline", "", "Baseline run ID (default: latest prior run)")
	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "Directory for archived runs (default from .stylebench.yaml)")
	cmd.Flags().StringVar(&rubricsDir, "rubrics-dir", "", "Directory of per-style rubric YAML files")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with per-pair progress")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip checking that manifest images exist")
	cmd.Flags().StringVar(&markdownPath, "report", "", "Write a markdown report to this path")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Write JUnit XML to this path")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Concurrent judge workers (overrides spec)")
	cmd.Flags().Float64Var(&epsilonFlag, "epsilon", -1, "Regression threshold in percentage points (overrides spec)")
	cmd.Flags().StringVar(&technicalOnly, "technical-model", "", "Override the technical judge model")
	cmd.Flags().StringVar(&preferenceMod, "preference-model", "", "Override the preference judge model")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Reuse evaluations for unchanged images from this directory")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Clear the evaluation cache before running")

	return cmd
}

func runCommandE(cmd *cobra.Command, args []string) error {
	specPath := args[0]

	spec, err := models.LoadRunSpec(specPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	projectCfg, err := projectconfig.Load(filepath.Dir(specPath))
	if err != nil {
		return err
	}

	applyOverrides(spec, projectCfg)

	store, err := openStore(projectCfg, specPath)
	if err != nil {
		return err
	}

	technical, preference, err := buildJudges(spec)
	if err != nil {
		return err
	}

	rubrics, err := loadRubrics(projectCfg, specPath)
	if err != nil {
		return err
	}

	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithRubrics(rubrics),
	}
	if runLabel != "" {
		runnerOpts = append(runnerOpts, orchestration.WithLabel(runLabel))
	}
	if runBaseline != "" {
		runnerOpts = append(runnerOpts, orchestration.WithBaselineID(runBaseline))
	}
	if !skipVerify {
		runnerOpts = append(runnerOpts, orchestration.WithVerifyFiles())
	}
	if cacheDir != "" {
		evalCache := cache.New(cacheDir)
		if clearCache {
			if err := evalCache.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		runnerOpts = append(runnerOpts, orchestration.WithCache(evalCache))
	}

	runner := orchestration.NewBenchmarkRunner(spec, specPath, store, technical, preference, runnerOpts...)

	if verbose {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
		runner.OnProgress(rankingSpinnerListener())
	}

	fmt.Printf("Running benchmark: %s\n", spec.Name)
	fmt.Printf("Technical judge:  %s\n", technical.Name())
	fmt.Printf("Preference judge: %s\n", preference.Name())
	fmt.Printf("Workers: %d\n", spec.Evaluation.Workers)
	fmt.Println()

	run, err := runner.Execute(context.Background())
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	fmt.Println()
	fmt.Print(reporting.FormatSummaryReport(run))

	if markdownPath != "" {
		if err := reporting.WriteMarkdownReport(run, markdownPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\nReport saved to: %s\n", markdownPath)
	}
	if junitPath != "" {
		if err := reporting.WriteJUnitXML(run, junitPath); err != nil {
			return fmt.Errorf("failed to write JUnit XML: %w", err)
		}
		fmt.Printf("JUnit XML saved to: %s\n", junitPath)
	}

	// Return regression as error so the caller maps it to the exit code
	if run.Comparison != nil && run.Comparison.Verdict == models.VerdictRegressionDetected {
		regs := run.Comparison.Regressions()
		return &RegressionError{
			Message: fmt.Sprintf("run completed with %d regressed style(s) against baseline %s",
				len(regs), run.BaselineID),
		}
	}

	return nil
}

// applyOverrides layers project config and CLI flags onto the spec. Flags
// win over project config, project config wins over spec defaults only
// where the spec left the value unset.
func applyOverrides(spec *models.RunSpec, cfg *projectconfig.ProjectConfig) {
	if technicalOnly != "" {
		spec.Judges.Technical.ModelID = technicalOnly
	} else if spec.Judges.Technical.ModelID == "" && cfg.Defaults.TechnicalModel != "" {
		spec.Judges.Technical.ModelID = cfg.Defaults.TechnicalModel
	}

	if preferenceMod != "" {
		spec.Judges.Preference.ModelID = preferenceMod
	} else if spec.Judges.Preference.ModelID == "" && cfg.Defaults.PreferenceModel != "" {
		spec.Judges.Preference.ModelID = cfg.Defaults.PreferenceModel
	}

	if workersFlag > 0 {
		spec.Evaluation.Workers = workersFlag
	}
	if epsilonFlag >= 0 {
		spec.Comparison.Epsilon = epsilonFlag
	}
}

func openStore(cfg *projectconfig.ProjectConfig, specPath string) (*runstore.Store, error) {
	dir := runsDir
	if dir == "" {
		dir = cfg.Paths.Runs
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(specPath), dir)
	}
	return runstore.New(dir)
}

func buildJudges(spec *models.RunSpec) (judge.Judge, judge.Judge, error) {
	technical, err := judge.Create(spec.Judges.Technical, spec.Evaluation.MaxAttempts)
	if err != nil {
		return nil, nil, fmt.Errorf("technical judge: %w", err)
	}
	preference, err := judge.Create(spec.Judges.Preference, spec.Evaluation.MaxAttempts)
	if err != nil {
		return nil, nil, fmt.Errorf("preference judge: %w", err)
	}
	return technical, preference, nil
}

func loadRubrics(cfg *projectconfig.ProjectConfig, specPath string) (*rubric.Store, error) {
	dir := rubricsDir
	if dir == "" {
		dir = cfg.Paths.Rubrics
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(specPath), dir)
	}
	return rubric.LoadDir(dir)
}

func verboseProgressListener(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventPhaseStart:
		fmt.Printf("Phase: %s\n", event.Phase)
	case orchestration.EventPairStart:
		fmt.Printf("  [%d/%d] Evaluating %s pair...\n", event.PairNum, event.TotalPairs, event.Style)
	case orchestration.EventPairComplete:
		pct, _ := event.Details["percentage"].(float64)
		grade, _ := event.Details["grade"].(string)
		fmt.Printf("  [%d/%d] ✓ %s: %.2f%% (%s)\n", event.PairNum, event.TotalPairs, event.Style, pct, grade)
	case orchestration.EventPairFailed:
		errMsg, _ := event.Details["error"].(string)
		fmt.Printf("  [%d/%d] ✗ %s: %s\n", event.PairNum, event.TotalPairs, event.Style, errMsg)
	case orchestration.EventRunComplete:
		fmt.Println("Run complete.")
	}
}

// rankingSpinnerListener shows a spinner during the preference ranking
// phase, which is a single long judge call with no per-pair progress.
func rankingSpinnerListener() orchestration.ProgressListener {
	var stop func()
	return func(event orchestration.ProgressEvent) {
		if event.Phase != models.PhaseRanked {
			return
		}
		switch event.EventType {
		case orchestration.EventPhaseStart:
			stop = spinner.Start(os.Stderr, "Ranking styles...")
		case orchestration.EventPhaseComplete:
			if stop != nil {
				stop()
				stop = nil
			}
		}
	}
}

func simpleProgressListener(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventPairComplete:
		fmt.Printf("✓ [%d/%d] %s\n", event.PairNum, event.TotalPairs, event.Style)
	case orchestration.EventPairFailed:
		fmt.Printf("✗ [%d/%d] %s\n", event.PairNum, event.TotalPairs, event.Style)
	}
}
