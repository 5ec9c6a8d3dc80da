package models

// Classification describes how one style's score moved between a baseline
// run and a candidate run.
type Classification string

const (
	ClassUnchanged Classification = "UNCHANGED"
	ClassImproved  Classification = "IMPROVED"
	ClassRegressed Classification = "REGRESSED"
	ClassAdded     Classification = "ADDED"
	ClassRemoved   Classification = "REMOVED"
)

// Verdict is the overall outcome of a baseline comparison. REGRESSED styles
// dominate: a single regression yields VerdictRegressionDetected no matter
// how many styles improved.
type Verdict string

const (
	VerdictRegressionDetected Verdict = "REGRESSION_DETECTED"
	VerdictImproved           Verdict = "IMPROVED"
	VerdictUnchanged          Verdict = "UNCHANGED"
)

// StyleDelta is one style's movement between two runs. Delta is candidate
// minus baseline in percentage points; it is zero for ADDED and REMOVED
// styles, which exist in only one of the runs.
type StyleDelta struct {
	Style          string         `json:"style"`
	BaselineScore  float64        `json:"baseline_score"`
	CandidateScore float64        `json:"candidate_score"`
	Delta          float64        `json:"delta"`
	Classification Classification `json:"classification"`
}

// ComparisonResult is the outcome of comparing a candidate run against a
// baseline run.
type ComparisonResult struct {
	BaselineRunID  string       `json:"baseline_run_id"`
	CandidateRunID string       `json:"candidate_run_id"`
	Epsilon        float64      `json:"epsilon"`
	Deltas         []StyleDelta `json:"deltas"`
	Verdict        Verdict      `json:"verdict"`
}

// Regressions returns the deltas classified as REGRESSED.
func (c *ComparisonResult) Regressions() []StyleDelta {
	var out []StyleDelta
	for _, d := range c.Deltas {
		if d.Classification == ClassRegressed {
			out = append(out, d)
		}
	}
	return out
}
