package judge

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

const defaultClaudeKeyEnv = "ANTHROPIC_API_KEY"

const defaultClaudeMaxTokens = 4096

// ClaudeArgs configures a Claude-backed judge.
type ClaudeArgs struct {
	Model       string
	APIKeyEnv   string
	MaxTokens   int64
	MaxAttempts int
}

// ClaudeJudge grades pairs with the Anthropic Messages API.
type ClaudeJudge struct {
	model     string
	maxTokens int64
	keyEnv    string
	retry     RetryConfig
}

func NewClaudeJudge(args ClaudeArgs) (*ClaudeJudge, error) {
	if args.Model == "" {
		return nil, fmt.Errorf("claude judge requires a model id")
	}
	if args.APIKeyEnv == "" {
		args.APIKeyEnv = defaultClaudeKeyEnv
	}
	if args.MaxTokens <= 0 {
		args.MaxTokens = defaultClaudeMaxTokens
	}
	return &ClaudeJudge{
		model:     args.Model,
		maxTokens: args.MaxTokens,
		keyEnv:    args.APIKeyEnv,
		retry:     DefaultRetryConfig(args.MaxAttempts),
	}, nil
}

func (c *ClaudeJudge) Name() string {
	return "claude/" + c.model
}

func (c *ClaudeJudge) complete(ctx context.Context, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	apiKey := os.Getenv(c.keyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.keyEnv)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &MalformedResponseError{
			Judge:    c.Name(),
			Problems: []string{"empty response"},
		}
	}
	return b.String(), nil
}

func imageBlock(data []byte, mediaType string) anthropic.ContentBlockParamUnion {
	return anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(data))
}

func (c *ClaudeJudge) Evaluate(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error) {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(BuildEvaluationPrompt(r, pair.Style)),
		imageBlock(pair.OriginalImage, pair.OriginalMediaType),
		imageBlock(pair.StyledImage, pair.StyledMediaType),
	}

	return retryWithBackoff(ctx, c.retry, "claude.evaluate", func() ([]models.AssertionResult, error) {
		raw, err := c.complete(ctx, blocks)
		if err != nil {
			return nil, err
		}
		return ParseEvaluation(c.Name(), raw, r)
	})
}

func (c *ClaudeJudge) Rank(ctx context.Context, samples []StyleSample) (map[string]int, error) {
	styles := make([]string, 0, len(samples))
	for _, s := range samples {
		styles = append(styles, s.Style)
	}

	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(BuildRankingPrompt(styles)),
	}
	for _, s := range samples {
		blocks = append(blocks, imageBlock(s.Image, s.MediaType))
	}

	return retryWithBackoff(ctx, c.retry, "claude.rank", func() (map[string]int, error) {
		raw, err := c.complete(ctx, blocks)
		if err != nil {
			return nil, err
		}
		return ParseRanking(c.Name(), raw, styles)
	})
}
