package models

import (
	"time"
)

// Grade is a letter grade derived from a percentage score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeF     Grade = "F"
)

// gradeThreshold maps a minimum percentage to a letter grade. The table is
// ordered highest first; the first threshold at or below the percentage wins.
type gradeThreshold struct {
	Min   float64
	Grade Grade
}

// GradeThresholds is data, not logic: custom rubrics with non-default weights
// still map through the same table because percentage is always computed
// against the rubric's actual maximum.
var GradeThresholds = []gradeThreshold{
	{90, GradeAPlus},
	{80, GradeA},
	{70, GradeB},
	{60, GradeC},
	{0, GradeF},
}

// GradeFor returns the letter grade for a percentage score.
func GradeFor(percentage float64) Grade {
	for _, t := range GradeThresholds {
		if percentage >= t.Min {
			return t.Grade
		}
	}
	return GradeF
}

// AssertionResult is one judge's answer to one assertion for one image pair.
// Confidence is an integer in [1, 5]; a zero or absent confidence is a parse
// failure upstream, never a valid low score. Immutable after creation.
type AssertionResult struct {
	AssertionID string `json:"assertion_id"`
	Answer      bool   `json:"answer"`
	Confidence  int    `json:"confidence"`
	Evidence    string `json:"evidence"`
}

// DimensionScore is derived from the assertion results of one dimension.
//
// PassRate is yes-count over all results. AvgConfidence averages confidence
// over ALL assertions in the dimension, not just passing ones, so a confident
// "no" still lowers the score rather than hiding from it. RawScore is
// PassRate * AvgConfidence clamped to [0, 5].
type DimensionScore struct {
	Dimension     string  `json:"dimension"`
	Weight        float64 `json:"weight"`
	Passed        int     `json:"passed"`
	Total         int     `json:"total"`
	PassRate      float64 `json:"pass_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
	RawScore      float64 `json:"raw_score"`
	WeightedScore float64 `json:"weighted_score"`
}

// EvaluationRecord is one graded image pair for one style. Records are
// append-only: re-evaluating the same pair produces a new record with a new
// EvaluationID rather than overwriting this one.
type EvaluationRecord struct {
	EvaluationID  string            `json:"evaluation_id"`
	Timestamp     time.Time         `json:"timestamp"`
	OriginalImage string            `json:"original_image"`
	StyledImage   string            `json:"styled_image"`
	Style         string            `json:"style"`
	Results       []AssertionResult `json:"results"`
	Dimensions    []DimensionScore  `json:"dimensions"`
	Total         float64           `json:"weighted_total"`
	MaxPossible   float64           `json:"max_score"`
	Percentage    float64           `json:"percentage"`
	Grade         Grade             `json:"grade"`
}

// TotalPassed returns how many assertions the judge answered yes across all
// dimensions.
func (e *EvaluationRecord) TotalPassed() int {
	passed := 0
	for _, d := range e.Dimensions {
		passed += d.Passed
	}
	return passed
}

// TotalAssertions returns the number of assertions evaluated across all
// dimensions.
func (e *EvaluationRecord) TotalAssertions() int {
	total := 0
	for _, d := range e.Dimensions {
		total += d.Total
	}
	return total
}
