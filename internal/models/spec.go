package models

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RunSpec is the YAML document that describes one benchmark run: which
// image pairs to grade, which judges to use, and how to blend their
// rankings.
type RunSpec struct {
	SpecIdentity `yaml:",inline"`
	Version      string          `yaml:"version"`
	Capture      CaptureConfig   `yaml:"capture"`
	Judges       JudgesConfig    `yaml:"judges"`
	Synthesis    SynthesisConfig `yaml:"synthesis"`
	Evaluation   EvalConfig      `yaml:"evaluation"`
	Comparison   CompareConfig   `yaml:"comparison,omitempty"`
}

type SpecIdentity struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// CaptureConfig locates the image pairs to evaluate.
type CaptureConfig struct {
	ManifestPath string   `yaml:"manifest"`
	ImageRoot    string   `yaml:"image_root,omitempty"`
	Styles       []string `yaml:"styles,omitempty"`
}

// JudgeConfig selects and configures one judge backend. Parameters are
// backend-specific and decoded by the judge factory.
type JudgeConfig struct {
	Kind       string         `yaml:"type" json:"kind"`
	ModelID    string         `yaml:"model,omitempty" json:"model_id,omitempty"`
	Parameters map[string]any `yaml:"config,omitempty" json:"parameters,omitempty"`
}

// JudgesConfig names the two judges of the pipeline. Technical grades
// assertions pair by pair; Preference ranks the styles holistically.
type JudgesConfig struct {
	Technical  JudgeConfig `yaml:"technical"`
	Preference JudgeConfig `yaml:"preference"`
}

// SynthesisConfig weights the two rankings when blending them into the
// final ordering.
type SynthesisConfig struct {
	FeasibilityWeight float64 `yaml:"feasibility_weight"`
	PreferenceWeight  float64 `yaml:"preference_weight"`
}

// EvalConfig controls scoring and judge execution.
type EvalConfig struct {
	Rubric      string `yaml:"rubric,omitempty"`
	Workers     int    `yaml:"max_workers,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty"`
	TimeoutSec  int    `yaml:"timeout_seconds,omitempty"`
}

// CompareConfig controls baseline regression detection.
type CompareConfig struct {
	BaselineRunID string  `yaml:"baseline,omitempty"`
	Epsilon       float64 `yaml:"epsilon,omitempty"`
}

// LoadRunSpec loads and validates a run spec from a YAML file.
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}

	spec.applyDefaults()

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

func (s *RunSpec) applyDefaults() {
	if s.Synthesis.FeasibilityWeight == 0 && s.Synthesis.PreferenceWeight == 0 {
		s.Synthesis.FeasibilityWeight = 0.5
		s.Synthesis.PreferenceWeight = 0.5
	}
	if s.Evaluation.Workers == 0 {
		s.Evaluation.Workers = 4
	}
	if s.Evaluation.MaxAttempts == 0 {
		s.Evaluation.MaxAttempts = 3
	}
	if s.Evaluation.TimeoutSec == 0 {
		s.Evaluation.TimeoutSec = 120
	}
	if s.Comparison.Epsilon == 0 {
		s.Comparison.Epsilon = 0.5
	}
}

// Validate checks that the spec is internally consistent.
func (s *RunSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("spec name is required")
	}
	if s.Capture.ManifestPath == "" {
		return fmt.Errorf("capture.manifest is required")
	}
	if s.Judges.Technical.Kind == "" {
		return fmt.Errorf("judges.technical.type is required")
	}
	if s.Judges.Preference.Kind == "" {
		return fmt.Errorf("judges.preference.type is required")
	}
	if s.Synthesis.FeasibilityWeight < 0 || s.Synthesis.PreferenceWeight < 0 {
		return fmt.Errorf("synthesis weights must be non-negative, got feasibility=%g preference=%g",
			s.Synthesis.FeasibilityWeight, s.Synthesis.PreferenceWeight)
	}
	if s.Synthesis.FeasibilityWeight+s.Synthesis.PreferenceWeight == 0 {
		return fmt.Errorf("synthesis weights must not both be zero")
	}
	if s.Evaluation.Workers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", s.Evaluation.Workers)
	}
	if s.Evaluation.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", s.Evaluation.MaxAttempts)
	}
	if s.Comparison.Epsilon < 0 {
		return fmt.Errorf("comparison.epsilon must be non-negative, got %g", s.Comparison.Epsilon)
	}
	return nil
}

// ResolveManifestPath returns the manifest path relative to the spec file's
// directory when it is not absolute.
func (s *RunSpec) ResolveManifestPath(specPath string) string {
	if filepath.IsAbs(s.Capture.ManifestPath) {
		return s.Capture.ManifestPath
	}
	return filepath.Join(filepath.Dir(specPath), s.Capture.ManifestPath)
}
