package judge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

func TestCreate_MockJudge(t *testing.T) {
	j, err := Create(models.JudgeConfig{
		Kind: "mock",
		Parameters: map[string]any{
			"pass_all":   true,
			"confidence": 4,
		},
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, "mock", j.Name())

	results, err := j.Evaluate(context.Background(), Pair{Style: "watercolor"}, rubric.Generic())
	require.NoError(t, err)
	require.Len(t, results, len(rubric.Generic().Assertions))
	for _, r := range results {
		assert.True(t, r.Answer)
		assert.Equal(t, 4, r.Confidence)
		assert.NotEmpty(t, r.Evidence)
	}
}

func TestCreate_InvalidType(t *testing.T) {
	_, err := Create(models.JudgeConfig{Kind: "gpt-9"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid judge type")
}

func TestCreate_DefaultModels(t *testing.T) {
	t.Run("gemini", func(t *testing.T) {
		j, err := Create(models.JudgeConfig{Kind: "gemini"}, 1)
		require.NoError(t, err)
		assert.Equal(t, "gemini/"+DefaultGeminiModel, j.Name())
	})

	t.Run("claude", func(t *testing.T) {
		j, err := Create(models.JudgeConfig{Kind: "claude"}, 1)
		require.NoError(t, err)
		assert.Equal(t, "claude/"+DefaultClaudeModel, j.Name())
	})
}

func TestMockJudge_RankOrder(t *testing.T) {
	j := NewMockJudge(MockArgs{RankOrder: []string{"sketch", "watercolor"}})

	ranks, err := j.Rank(context.Background(), []StyleSample{
		{Style: "watercolor"},
		{Style: "cyberpunk"},
		{Style: "sketch"},
		{Style: "anime"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, ranks["sketch"])
	assert.Equal(t, 2, ranks["watercolor"])
	// Unlisted styles follow alphabetically.
	assert.Equal(t, 3, ranks["anime"])
	assert.Equal(t, 4, ranks["cyberpunk"])
}

func TestMockJudge_Overrides(t *testing.T) {
	j := NewMockJudge(MockArgs{})
	j.EvaluateFunc = func(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error) {
		return nil, assert.AnError
	}

	_, err := j.Evaluate(context.Background(), Pair{Style: "s"}, rubric.Generic())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuildEvaluationPrompt(t *testing.T) {
	r := rubric.Generic()
	prompt := BuildEvaluationPrompt(r, "watercolor")

	assert.Contains(t, prompt, `"watercolor"`)
	for _, a := range r.Assertions {
		assert.Contains(t, prompt, a.ID+": "+a.Text)
	}
	assert.Contains(t, prompt, "```json")
}

func TestBuildRankingPrompt(t *testing.T) {
	prompt := BuildRankingPrompt([]string{"watercolor", "cyberpunk"})

	assert.Contains(t, prompt, "1. watercolor")
	assert.Contains(t, prompt, "2. cyberpunk")
	assert.Contains(t, prompt, "Rank all 2 styles")
	assert.True(t, strings.Contains(prompt, "```json"))
}

func TestRetryWithBackoff_StopsOnSuccess(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseBackoff: 0, MaxBackoff: 0}
	calls := 0

	got, err := retryWithBackoff(context.Background(), cfg, "op", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, assert.AnError
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, BaseBackoff: 0, MaxBackoff: 0}
	calls := 0

	_, err := retryWithBackoff(context.Background(), cfg, "op", func() (int, error) {
		calls++
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: 0}
	calls := 0
	_, err := retryWithBackoff(ctx, cfg, "op", func() (int, error) {
		calls++
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
