// Package comparison detects regressions between a candidate run and a
// baseline run by classifying per-style score movement.
package comparison

import (
	"math"
	"sort"

	"github.com/restylelab/stylebench/internal/models"
)

// DefaultEpsilon is the movement threshold in percentage points. Deltas
// with absolute value below epsilon count as noise, not movement.
const DefaultEpsilon = 0.5

// Compare classifies every style's movement between the two runs and
// derives the overall verdict. Styles present in only one run are marked
// ADDED or REMOVED and never affect the verdict.
func Compare(baseline, candidate *models.RunRecord, epsilon float64) *models.ComparisonResult {
	if epsilon < 0 {
		epsilon = DefaultEpsilon
	}

	// A first run has nothing to compare against. That is not an error:
	// the result is simply empty.
	if baseline == nil {
		return &models.ComparisonResult{
			CandidateRunID: candidate.RunID,
			Epsilon:        epsilon,
			Verdict:        models.VerdictUnchanged,
		}
	}

	baseAvgs := baseline.StyleAverages()
	candAvgs := candidate.StyleAverages()

	styles := map[string]bool{}
	for s := range baseAvgs {
		styles[s] = true
	}
	for s := range candAvgs {
		styles[s] = true
	}

	ordered := make([]string, 0, len(styles))
	for s := range styles {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	result := &models.ComparisonResult{
		BaselineRunID:  baseline.RunID,
		CandidateRunID: candidate.RunID,
		Epsilon:        epsilon,
	}

	for _, style := range ordered {
		baseScore, inBase := baseAvgs[style]
		candScore, inCand := candAvgs[style]

		delta := models.StyleDelta{
			Style:          style,
			BaselineScore:  baseScore,
			CandidateScore: candScore,
		}

		switch {
		case !inBase:
			delta.Classification = models.ClassAdded
		case !inCand:
			delta.Classification = models.ClassRemoved
		default:
			delta.Delta = candScore - baseScore
			delta.Classification = classify(delta.Delta, epsilon)
		}

		result.Deltas = append(result.Deltas, delta)
	}

	result.Verdict = verdict(result.Deltas)
	return result
}

func classify(delta, epsilon float64) models.Classification {
	if math.Abs(delta) < epsilon {
		return models.ClassUnchanged
	}
	if delta > 0 {
		return models.ClassImproved
	}
	return models.ClassRegressed
}

// verdict aggregates the per-style classifications. Any regression yields
// REGRESSION_DETECTED regardless of improvements elsewhere.
func verdict(deltas []models.StyleDelta) models.Verdict {
	improved := false
	for _, d := range deltas {
		switch d.Classification {
		case models.ClassRegressed:
			return models.VerdictRegressionDetected
		case models.ClassImproved:
			improved = true
		}
	}
	if improved {
		return models.VerdictImproved
	}
	return models.VerdictUnchanged
}
