package projectconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.Runs", "runs/", cfg.Paths.Runs)
	assertEqual(t, "Paths.Rubrics", "rubrics/", cfg.Paths.Rubrics)
	assertEqual(t, "Paths.Reports", "reports/", cfg.Paths.Reports)

	// Defaults
	assertEqual(t, "Defaults.TechnicalModel", "", cfg.Defaults.TechnicalModel)
	assertEqual(t, "Defaults.PreferenceModel", "", cfg.Defaults.PreferenceModel)
	assertEqualInt(t, "Defaults.Timeout", 120, cfg.Defaults.Timeout)
	assertEqualInt(t, "Defaults.Workers", 4, cfg.Defaults.Workers)
	assertEqualInt(t, "Defaults.Retries", 3, cfg.Defaults.Retries)
	assertBoolPtr(t, "Defaults.Verbose", false, cfg.Defaults.Verbose)

	// Comparison
	assertFloatPtr(t, "Comparison.Epsilon", 0.5, cfg.Comparison.Epsilon)

	// Synthesis
	assertFloatPtr(t, "Synthesis.FeasibilityWeight", 0.5, cfg.Synthesis.FeasibilityWeight)
	assertFloatPtr(t, "Synthesis.PreferenceWeight", 0.5, cfg.Synthesis.PreferenceWeight)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stylebench.yaml", `
paths:
  runs: "archive/"
  rubrics: "custom-rubrics/"
  reports: "out/"
defaults:
  technical_model: gemini-2.0-flash
  preference_model: claude-sonnet-4-20250514
  timeout: 300
  workers: 8
  retries: 5
  verbose: true
comparison:
  epsilon: 1.0
synthesis:
  feasibility_weight: 0.7
  preference_weight: 0.3
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Runs", "archive/", cfg.Paths.Runs)
	assertEqual(t, "Paths.Rubrics", "custom-rubrics/", cfg.Paths.Rubrics)
	assertEqual(t, "Paths.Reports", "out/", cfg.Paths.Reports)
	assertEqual(t, "Defaults.TechnicalModel", "gemini-2.0-flash", cfg.Defaults.TechnicalModel)
	assertEqual(t, "Defaults.PreferenceModel", "claude-sonnet-4-20250514", cfg.Defaults.PreferenceModel)
	assertEqualInt(t, "Defaults.Timeout", 300, cfg.Defaults.Timeout)
	assertEqualInt(t, "Defaults.Workers", 8, cfg.Defaults.Workers)
	assertEqualInt(t, "Defaults.Retries", 5, cfg.Defaults.Retries)
	assertBoolPtr(t, "Defaults.Verbose", true, cfg.Defaults.Verbose)
	assertFloatPtr(t, "Comparison.Epsilon", 1.0, cfg.Comparison.Epsilon)
	assertFloatPtr(t, "Synthesis.FeasibilityWeight", 0.7, cfg.Synthesis.FeasibilityWeight)
	assertFloatPtr(t, "Synthesis.PreferenceWeight", 0.3, cfg.Synthesis.PreferenceWeight)
}

func TestLoad_PartialConfig_MergesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stylebench.yaml", `
paths:
  runs: "elsewhere/"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Runs", "elsewhere/", cfg.Paths.Runs)
	// Everything else keeps its default.
	defaults := New()
	assertEqual(t, "Paths.Rubrics", defaults.Paths.Rubrics, cfg.Paths.Rubrics)
	assertEqualInt(t, "Defaults.Timeout", defaults.Defaults.Timeout, cfg.Defaults.Timeout)
	assertFloatPtr(t, "Comparison.Epsilon", *defaults.Comparison.Epsilon, cfg.Comparison.Epsilon)
}

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Paths.Runs", "runs/", cfg.Paths.Runs)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stylebench.yaml", `
defaults:
  workers: [not valid yaml
    this is broken
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".stylebench.yaml", `
paths:
  runs: found-it/
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Runs", "found-it/", cfg.Paths.Runs)
	// Other defaults still populated
	assertEqualInt(t, "Defaults.Workers", 4, cfg.Defaults.Workers)
}

func TestPointerFields(t *testing.T) {
	t.Run("defaults preserved when not set in YAML", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".stylebench.yaml", `
defaults:
  workers: 2
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		// Epsilon not in file → default preserved by merge
		assertFloatPtr(t, "Comparison.Epsilon", 0.5, cfg.Comparison.Epsilon)
		assertBoolPtr(t, "Defaults.Verbose", false, cfg.Defaults.Verbose)
	})

	t.Run("explicit zero epsilon survives the merge", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".stylebench.yaml", `
comparison:
  epsilon: 0
synthesis:
  feasibility_weight: 0
  preference_weight: 1
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertFloatPtr(t, "Comparison.Epsilon", 0, cfg.Comparison.Epsilon)
		assertFloatPtr(t, "Synthesis.FeasibilityWeight", 0, cfg.Synthesis.FeasibilityWeight)
		assertFloatPtr(t, "Synthesis.PreferenceWeight", 1, cfg.Synthesis.PreferenceWeight)
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want %v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

func assertFloatPtr(t *testing.T, field string, want float64, got *float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want %v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}
