// Package scoring turns a judge's assertion results into per-dimension
// scores and a weighted total. Scoring is pure: the same rubric and
// results always produce the same record, with no I/O involved.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

// maxRawScore caps a dimension's raw score. Pass rate tops out at 1.0 and
// confidence at 5, so the cap only matters if either input is out of range.
const maxRawScore = 5.0

// IncompleteEvaluationError reports that a judge's results do not line up
// with the rubric: missing answers, answers for unknown assertions, or
// answers that fail validation.
type IncompleteEvaluationError struct {
	Rubric   string
	Missing  []string
	Unknown  []string
	Invalid  []string
	Problems []string
}

func (e *IncompleteEvaluationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing results for %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("results for unknown assertions %s", strings.Join(e.Unknown, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid results for %s", strings.Join(e.Invalid, ", ")))
	}
	if len(parts) == 0 {
		parts = e.Problems
	}
	return fmt.Sprintf("incomplete evaluation against rubric %q: %s", e.Rubric, strings.Join(parts, "; "))
}

// Score grades one set of assertion results against a rubric. Every
// assertion in the rubric must have exactly one valid result; anything
// else returns an IncompleteEvaluationError and no partial score.
func Score(r *rubric.Rubric, results []models.AssertionResult) (*models.EvaluationRecord, error) {
	if err := validate(r, results); err != nil {
		return nil, err
	}

	byID := make(map[string]models.AssertionResult, len(results))
	for _, res := range results {
		byID[res.AssertionID] = res
	}

	var dims []models.DimensionScore
	total := 0.0
	grouped := r.ByDimension()
	for _, dim := range rubric.DimensionOrder {
		assertions := grouped[dim]
		if len(assertions) == 0 {
			continue
		}

		passed := 0
		confSum := 0
		for _, a := range assertions {
			res := byID[a.ID]
			if res.Answer {
				passed++
			}
			confSum += res.Confidence
		}

		passRate := float64(passed) / float64(len(assertions))
		avgConf := float64(confSum) / float64(len(assertions))
		raw := passRate * avgConf
		if raw > maxRawScore {
			raw = maxRawScore
		}
		if raw < 0 {
			raw = 0
		}

		weight := rubric.DimensionWeights[dim]
		ds := models.DimensionScore{
			Dimension:     dim,
			Weight:        weight,
			Passed:        passed,
			Total:         len(assertions),
			PassRate:      passRate,
			AvgConfidence: avgConf,
			RawScore:      raw,
			WeightedScore: raw * weight,
		}
		dims = append(dims, ds)
		total += ds.WeightedScore
	}

	max := r.MaxPossible()
	pct := 0.0
	if max > 0 {
		pct = total / max * 100
	}

	return &models.EvaluationRecord{
		Results:     results,
		Dimensions:  dims,
		Total:       total,
		MaxPossible: max,
		Percentage:  pct,
		Grade:       models.GradeFor(pct),
	}, nil
}

func validate(r *rubric.Rubric, results []models.AssertionResult) error {
	known := make(map[string]bool, len(r.Assertions))
	for _, a := range r.Assertions {
		known[a.ID] = true
	}

	errOut := &IncompleteEvaluationError{Rubric: r.Name}
	seen := map[string]bool{}
	for _, res := range results {
		if !known[res.AssertionID] {
			errOut.Unknown = append(errOut.Unknown, res.AssertionID)
			continue
		}
		if seen[res.AssertionID] {
			errOut.Invalid = append(errOut.Invalid, res.AssertionID+" (duplicate)")
			continue
		}
		seen[res.AssertionID] = true

		if res.Confidence < 1 || res.Confidence > 5 {
			errOut.Invalid = append(errOut.Invalid, fmt.Sprintf("%s (confidence %d)", res.AssertionID, res.Confidence))
		}
		if strings.TrimSpace(res.Evidence) == "" {
			errOut.Invalid = append(errOut.Invalid, res.AssertionID+" (empty evidence)")
		}
	}

	for _, a := range r.Assertions {
		if !seen[a.ID] {
			errOut.Missing = append(errOut.Missing, a.ID)
		}
	}
	sort.Strings(errOut.Missing)

	if len(errOut.Missing) > 0 || len(errOut.Unknown) > 0 || len(errOut.Invalid) > 0 {
		return errOut
	}
	return nil
}
