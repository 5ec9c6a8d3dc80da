// Package rubric holds the assertion sets that judges grade image pairs
// against. Each style can carry its own assertions; styles without one fall
// back to a generic rubric that covers the same five dimensions.
package rubric

import (
	"fmt"
	"strings"
)

// Dimension names, in scoring order. Accuracy and completeness carry full
// weight, relevance and usefulness half weight, and exceptional double
// weight as a bonus dimension.
const (
	DimAccuracy     = "accuracy"
	DimCompleteness = "completeness"
	DimRelevance    = "relevance"
	DimUsefulness   = "usefulness"
	DimExceptional  = "exceptional"
)

// DimensionOrder fixes iteration order for scoring and reporting.
var DimensionOrder = []string{
	DimAccuracy,
	DimCompleteness,
	DimRelevance,
	DimUsefulness,
	DimExceptional,
}

// DimensionWeights are the multipliers applied to each dimension's raw
// score. The maximum possible total is always derived from this table,
// never hard-coded, so custom weights stay consistent everywhere.
var DimensionWeights = map[string]float64{
	DimAccuracy:     1.0,
	DimCompleteness: 1.0,
	DimRelevance:    0.5,
	DimUsefulness:   0.5,
	DimExceptional:  2.0,
}

// dimensionInitials maps each dimension to the letter used in assertion
// ids. Accuracy assertions are A1, A2, ...; completeness C1, ...; and so
// on. Exceptional uses E and relevance R to keep the initials unique.
var dimensionInitials = map[string]string{
	DimAccuracy:     "A",
	DimCompleteness: "C",
	DimRelevance:    "R",
	DimUsefulness:   "U",
	DimExceptional:  "E",
}

// Assertion is one yes/no question a judge answers about an image pair.
type Assertion struct {
	ID        string `json:"id" yaml:"id"`
	Dimension string `json:"dimension" yaml:"dimension"`
	Text      string `json:"text" yaml:"text"`
}

// Rubric is a named set of assertions grouped by dimension.
type Rubric struct {
	Name       string
	Assertions []Assertion
}

// ByDimension groups the rubric's assertions by dimension, preserving
// their order within each group.
func (r *Rubric) ByDimension() map[string][]Assertion {
	groups := map[string][]Assertion{}
	for _, a := range r.Assertions {
		groups[a.Dimension] = append(groups[a.Dimension], a)
	}
	return groups
}

// MaxPossible returns the highest weighted total this rubric can produce.
// Each dimension with at least one assertion contributes 5.0 times its
// weight.
func (r *Rubric) MaxPossible() float64 {
	max := 0.0
	seen := map[string]bool{}
	for _, a := range r.Assertions {
		if seen[a.Dimension] {
			continue
		}
		seen[a.Dimension] = true
		max += 5.0 * DimensionWeights[a.Dimension]
	}
	return max
}

// Generic returns the fallback rubric used for styles that have no rubric
// of their own. One assertion per dimension, phrased generally enough to
// apply to any style transfer.
func Generic() *Rubric {
	texts := map[string]string{
		DimAccuracy:     "Does the styled image faithfully apply the requested style to the original content?",
		DimCompleteness: "Is the style applied across the entire image rather than only parts of it?",
		DimRelevance:    "Does the result stay relevant to the original image's subject and composition?",
		DimUsefulness:   "Would the styled image be usable for its intended purpose without rework?",
		DimExceptional:  "Does the result show exceptional artistic quality beyond a competent transfer?",
	}

	r := &Rubric{Name: "generic"}
	for _, dim := range DimensionOrder {
		r.Assertions = append(r.Assertions, Assertion{
			ID:        AssertionID(dim, 1),
			Dimension: dim,
			Text:      texts[dim],
		})
	}
	return r
}

// AssertionID builds the conventional id for the nth assertion of a
// dimension, such as A1 or E3. Ordinals are 1-based.
func AssertionID(dimension string, ordinal int) string {
	initial, ok := dimensionInitials[dimension]
	if !ok {
		initial = strings.ToUpper(dimension[:1])
	}
	return fmt.Sprintf("%s%d", initial, ordinal)
}

// Store looks up rubrics by style name, case-insensitively. Lookups that
// miss return the generic rubric rather than failing, so a run can mix
// styles with and without bespoke assertions.
type Store struct {
	rubrics map[string]*Rubric
	generic *Rubric
}

// NewStore builds a store from the given rubrics.
func NewStore(rubrics ...*Rubric) *Store {
	s := &Store{
		rubrics: make(map[string]*Rubric, len(rubrics)),
		generic: Generic(),
	}
	for _, r := range rubrics {
		s.rubrics[strings.ToLower(r.Name)] = r
	}
	return s
}

// Lookup returns the rubric for a style, falling back to the generic
// rubric when none is registered. The second return reports whether a
// bespoke rubric was found.
func (s *Store) Lookup(style string) (*Rubric, bool) {
	if r, ok := s.rubrics[strings.ToLower(style)]; ok {
		return r, true
	}
	return s.generic, false
}

// Names returns the registered rubric names, excluding the generic
// fallback.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.rubrics))
	for name := range s.rubrics {
		names = append(names, name)
	}
	return names
}
