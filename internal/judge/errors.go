package judge

import (
	"fmt"
	"strings"
)

// MalformedResponseError reports that a judge's reply could not be parsed
// or failed schema validation. It carries the raw response so the failure
// can be triaged without re-running the judge.
type MalformedResponseError struct {
	Judge    string
	Problems []string
	Raw      string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("judge %s returned a malformed response: %s", e.Judge, strings.Join(e.Problems, "; "))
}

// IncompleteResponseError reports that a judge's reply parsed cleanly but
// did not cover what was asked: assertions left unanswered, or styles
// missing from a ranking.
type IncompleteResponseError struct {
	Judge   string
	Missing []string
	Extra   []string
}

func (e *IncompleteResponseError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected %s", strings.Join(e.Extra, ", ")))
	}
	return fmt.Sprintf("judge %s returned an incomplete response: %s", e.Judge, strings.Join(parts, "; "))
}
