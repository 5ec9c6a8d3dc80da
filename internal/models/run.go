package models

import (
	"time"
)

// Phase is an orchestration phase in a benchmark run. Phases advance in a
// fixed order; a run's Phase field records the last phase that completed.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseValidated   Phase = "validated"
	PhaseCaptured    Phase = "captured"
	PhaseEvaluated   Phase = "evaluated"
	PhaseRanked      Phase = "ranked"
	PhaseSynthesized Phase = "synthesized"
	PhaseCompared    Phase = "compared"
	PhasePersisted   Phase = "persisted"
)

// PhaseOrder lists the phases in execution order. PhaseCompared is skipped
// when no baseline exists, and PhasePersisted may be retried after a failed
// write, but a phase never runs before its predecessor has completed.
var PhaseOrder = []Phase{
	PhasePending,
	PhaseValidated,
	PhaseCaptured,
	PhaseEvaluated,
	PhaseRanked,
	PhaseSynthesized,
	PhaseCompared,
	PhasePersisted,
}

// PhaseIndex returns the position of p in the execution order, or -1 for an
// unknown phase.
func PhaseIndex(p Phase) int {
	for i, candidate := range PhaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// CapturedPair is one original/styled image pair recorded during capture,
// before any judging happens.
type CapturedPair struct {
	OriginalImage string `json:"original_image"`
	StyledImage   string `json:"styled_image"`
	Style         string `json:"style"`
}

// EvaluationFailure records a judge failure for one pair. Failures are
// isolated per pair: the rest of the batch continues and the failure is
// reported here instead of aborting the run.
type EvaluationFailure struct {
	OriginalImage string `json:"original_image"`
	StyledImage   string `json:"styled_image"`
	Style         string `json:"style"`
	Err           string `json:"error"`
}

// RankingEntry is one style's position in the synthesized ranking.
// TechnicalRank comes from the scored evaluations, PreferenceRank from the
// preference judge, and FinalScore is the weighted blend of the two. Lower
// FinalScore is better; Rank is the 1-based position after sorting.
type RankingEntry struct {
	Style          string  `json:"style"`
	TechnicalRank  int     `json:"technical_rank"`
	PreferenceRank int     `json:"preference_rank"`
	FinalScore     float64 `json:"final_score"`
	Rank           int     `json:"rank"`
}

// RunRecord is the durable record of one benchmark run. It accumulates as
// phases complete and is persisted as a single JSON document.
type RunRecord struct {
	RunID       string              `json:"run_id"`
	Label       string              `json:"label,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at,omitzero"`
	Phase       Phase               `json:"phase"`
	SpecPath    string              `json:"spec_path"`
	Pairs       []CapturedPair      `json:"pairs"`
	Evaluations []EvaluationRecord  `json:"evaluations"`
	Failures    []EvaluationFailure `json:"failures,omitempty"`
	Rankings    []RankingEntry      `json:"rankings,omitempty"`
	Winner      string              `json:"winner,omitempty"`
	Comparison  *ComparisonResult   `json:"comparison,omitempty"`
	BaselineID  string              `json:"baseline_id,omitempty"`
}

// StyleAverages returns the mean percentage per style across this run's
// evaluations. Styles with no successful evaluations are absent.
func (r *RunRecord) StyleAverages() map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}

	for _, e := range r.Evaluations {
		sums[e.Style] += e.Percentage
		counts[e.Style]++
	}

	averages := make(map[string]float64, len(sums))
	for style, sum := range sums {
		averages[style] = sum / float64(counts[style])
	}

	return averages
}
