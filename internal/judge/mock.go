package judge

import (
	"context"
	"fmt"
	"sort"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

// MockArgs configures the mock judge used for dry runs and tests.
type MockArgs struct {
	// PassAll answers yes to every assertion; otherwise everything fails.
	PassAll bool
	// Confidence for every answer. Zero defaults to 5.
	Confidence int
	// RankOrder fixes the preference ranking, best first. Styles not
	// listed rank after the listed ones, alphabetically.
	RankOrder []string
}

// MockJudge produces deterministic results without any API calls. Tests
// can override EvaluateFunc or RankFunc to script failures.
type MockJudge struct {
	args MockArgs

	EvaluateFunc func(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error)
	RankFunc     func(ctx context.Context, samples []StyleSample) (map[string]int, error)
}

func NewMockJudge(args MockArgs) *MockJudge {
	if args.Confidence == 0 {
		args.Confidence = 5
	}
	return &MockJudge{args: args}
}

func (m *MockJudge) Name() string {
	return "mock"
}

func (m *MockJudge) Evaluate(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, pair, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]models.AssertionResult, 0, len(r.Assertions))
	for _, a := range r.Assertions {
		results = append(results, models.AssertionResult{
			AssertionID: a.ID,
			Answer:      m.args.PassAll,
			Confidence:  m.args.Confidence,
			Evidence:    fmt.Sprintf("mock evaluation of %s for style %s", a.ID, pair.Style),
		})
	}
	return results, nil
}

func (m *MockJudge) Rank(ctx context.Context, samples []StyleSample) (map[string]int, error) {
	if m.RankFunc != nil {
		return m.RankFunc(ctx, samples)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	preferred := make(map[string]int, len(m.args.RankOrder))
	for i, style := range m.args.RankOrder {
		preferred[style] = i
	}

	styles := make([]string, 0, len(samples))
	for _, s := range samples {
		styles = append(styles, s.Style)
	}
	sort.Slice(styles, func(i, j int) bool {
		pi, iOK := preferred[styles[i]]
		pj, jOK := preferred[styles[j]]
		switch {
		case iOK && jOK:
			return pi < pj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return styles[i] < styles[j]
		}
	})

	ranks := make(map[string]int, len(styles))
	for i, style := range styles {
		ranks[style] = i + 1
	}
	return ranks, nil
}
