// Package projectconfig provides the ProjectConfig struct and loader for
// .stylebench.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultRunsDir    = "runs/"
	DefaultRubricsDir = "rubrics/"
	DefaultReportsDir = "reports/"

	DefaultTimeout = 120
	DefaultWorkers = 4
	DefaultRetries = 3

	DefaultEpsilon = 0.5

	DefaultFeasibilityWeight = 0.5
	DefaultPreferenceWeight  = 0.5
)

// PathsConfig holds directory paths for runs, rubrics, and reports.
type PathsConfig struct {
	Runs    string `yaml:"runs,omitempty"`
	Rubrics string `yaml:"rubrics,omitempty"`
	Reports string `yaml:"reports,omitempty"`
}

// DefaultsConfig holds default execution parameters.
type DefaultsConfig struct {
	TechnicalModel  string `yaml:"technical_model,omitempty"`
	PreferenceModel string `yaml:"preference_model,omitempty"`
	Timeout         int    `yaml:"timeout,omitempty"`
	Workers         int    `yaml:"workers,omitempty"`
	Retries         int    `yaml:"retries,omitempty"`
	Verbose         *bool  `yaml:"verbose,omitempty"`
}

// ComparisonConfig holds baseline regression settings.
type ComparisonConfig struct {
	Epsilon *float64 `yaml:"epsilon,omitempty"`
}

// SynthesisConfig holds ranking blend weights.
type SynthesisConfig struct {
	FeasibilityWeight *float64 `yaml:"feasibility_weight,omitempty"`
	PreferenceWeight  *float64 `yaml:"preference_weight,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .stylebench.yaml.
type ProjectConfig struct {
	Paths      PathsConfig      `yaml:"paths,omitempty"`
	Defaults   DefaultsConfig   `yaml:"defaults,omitempty"`
	Comparison ComparisonConfig `yaml:"comparison,omitempty"`
	Synthesis  SynthesisConfig  `yaml:"synthesis,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Runs:    DefaultRunsDir,
			Rubrics: DefaultRubricsDir,
			Reports: DefaultReportsDir,
		},
		Defaults: DefaultsConfig{
			Timeout: DefaultTimeout,
			Workers: DefaultWorkers,
			Retries: DefaultRetries,
			Verbose: boolPtr(false),
		},
		Comparison: ComparisonConfig{
			Epsilon: floatPtr(DefaultEpsilon),
		},
		Synthesis: SynthesisConfig{
			FeasibilityWeight: floatPtr(DefaultFeasibilityWeight),
			PreferenceWeight:  floatPtr(DefaultPreferenceWeight),
		},
	}
}

// Load finds .stylebench.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .stylebench.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .stylebench.yaml: %w", err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .stylebench.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".stylebench.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Runs != "" {
		dst.Paths.Runs = src.Paths.Runs
	}
	if src.Paths.Rubrics != "" {
		dst.Paths.Rubrics = src.Paths.Rubrics
	}
	if src.Paths.Reports != "" {
		dst.Paths.Reports = src.Paths.Reports
	}

	// Defaults
	if src.Defaults.TechnicalModel != "" {
		dst.Defaults.TechnicalModel = src.Defaults.TechnicalModel
	}
	if src.Defaults.PreferenceModel != "" {
		dst.Defaults.PreferenceModel = src.Defaults.PreferenceModel
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.Retries != 0 {
		dst.Defaults.Retries = src.Defaults.Retries
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}

	// Comparison
	if src.Comparison.Epsilon != nil {
		dst.Comparison.Epsilon = src.Comparison.Epsilon
	}

	// Synthesis
	if src.Synthesis.FeasibilityWeight != nil {
		dst.Synthesis.FeasibilityWeight = src.Synthesis.FeasibilityWeight
	}
	if src.Synthesis.PreferenceWeight != nil {
		dst.Synthesis.PreferenceWeight = src.Synthesis.PreferenceWeight
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}
