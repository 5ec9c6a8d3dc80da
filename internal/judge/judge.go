// Package judge defines the LLM judge interface and its backends. A judge
// grades one image pair against a rubric's assertions and can also rank a
// set of styles holistically.
package judge

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

type Type string

const (
	TypeGemini Type = "gemini"
	TypeClaude Type = "claude"
	TypeMock   Type = "mock"
)

// Default model ids used when the spec leaves the model unset.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultClaudeModel = "claude-sonnet-4-20250514"
)

// Pair is one original/styled image pair handed to a judge. Both images
// are already loaded; judges never touch the filesystem.
type Pair struct {
	Style             string
	OriginalImage     []byte
	OriginalMediaType string
	StyledImage       []byte
	StyledMediaType   string
}

// StyleSample is a representative styled image for one style, used for
// holistic ranking.
type StyleSample struct {
	Style     string
	Image     []byte
	MediaType string
}

// Judge grades image pairs and ranks styles.
type Judge interface {
	// Name identifies the judge for logging and reports.
	Name() string

	// Evaluate answers every assertion in the rubric for one pair. The
	// result set covers every assertion exactly once or the call fails.
	Evaluate(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error)

	// Rank orders the given styles by preference, best first. The return
	// maps style name to 1-based rank and covers every input style.
	Rank(ctx context.Context, samples []StyleSample) (map[string]int, error)
}

// Create builds a judge from its spec config.
func Create(cfg models.JudgeConfig, maxAttempts int) (Judge, error) {
	switch Type(cfg.Kind) {
	case TypeGemini:
		var v struct {
			APIKey      string  `mapstructure:"api_key_env"`
			Temperature float32 `mapstructure:"temperature"`
		}
		if err := mapstructure.Decode(cfg.Parameters, &v); err != nil {
			return nil, err
		}

		model := cfg.ModelID
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiJudge(GeminiArgs{
			Model:       model,
			APIKeyEnv:   v.APIKey,
			Temperature: v.Temperature,
			MaxAttempts: maxAttempts,
		})
	case TypeClaude:
		var v struct {
			APIKey    string `mapstructure:"api_key_env"`
			MaxTokens int64  `mapstructure:"max_tokens"`
		}
		if err := mapstructure.Decode(cfg.Parameters, &v); err != nil {
			return nil, err
		}

		model := cfg.ModelID
		if model == "" {
			model = DefaultClaudeModel
		}
		return NewClaudeJudge(ClaudeArgs{
			Model:       model,
			APIKeyEnv:   v.APIKey,
			MaxTokens:   v.MaxTokens,
			MaxAttempts: maxAttempts,
		})
	case TypeMock:
		var v struct {
			PassAll    bool     `mapstructure:"pass_all"`
			Confidence int      `mapstructure:"confidence"`
			RankOrder  []string `mapstructure:"rank_order"`
		}
		if err := mapstructure.Decode(cfg.Parameters, &v); err != nil {
			return nil, err
		}
		return NewMockJudge(MockArgs{
			PassAll:    v.PassAll,
			Confidence: v.Confidence,
			RankOrder:  v.RankOrder,
		}), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid judge type", cfg.Kind)
	}
}
