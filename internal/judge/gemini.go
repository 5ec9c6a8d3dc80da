package judge

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

const defaultGeminiKeyEnv = "GEMINI_API_KEY"

// GeminiArgs configures a Gemini-backed judge.
type GeminiArgs struct {
	Model       string
	APIKeyEnv   string
	Temperature float32
	MaxAttempts int
}

// GeminiJudge grades pairs with the Gemini API. The client is created
// lazily on first use so judges can be constructed without credentials,
// such as during spec validation.
type GeminiJudge struct {
	model string
	args  GeminiArgs
	retry RetryConfig

	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
}

// NewGeminiJudge builds a Gemini judge. The API key is read from the
// environment at call time, never stored in specs.
func NewGeminiJudge(args GeminiArgs) (*GeminiJudge, error) {
	if args.Model == "" {
		return nil, fmt.Errorf("gemini judge requires a model id")
	}
	if args.APIKeyEnv == "" {
		args.APIKeyEnv = defaultGeminiKeyEnv
	}
	return &GeminiJudge{
		model: args.Model,
		args:  args,
		retry: DefaultRetryConfig(args.MaxAttempts),
	}, nil
}

func (g *GeminiJudge) Name() string {
	return "gemini/" + g.model
}

func (g *GeminiJudge) getClient(ctx context.Context) (*genai.Client, error) {
	g.clientOnce.Do(func() {
		apiKey := os.Getenv(g.args.APIKeyEnv)
		if apiKey == "" {
			g.clientErr = fmt.Errorf("environment variable %s is not set", g.args.APIKeyEnv)
			return
		}
		g.client, g.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.clientErr
}

func (g *GeminiJudge) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](g.args.Temperature),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", &MalformedResponseError{
			Judge:    g.Name(),
			Problems: []string{"empty response"},
		}
	}
	return text, nil
}

func (g *GeminiJudge) Evaluate(ctx context.Context, pair Pair, r *rubric.Rubric) ([]models.AssertionResult, error) {
	prompt := BuildEvaluationPrompt(r, pair.Style)
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(pair.OriginalImage, pair.OriginalMediaType),
		genai.NewPartFromBytes(pair.StyledImage, pair.StyledMediaType),
	}

	return retryWithBackoff(ctx, g.retry, "gemini.evaluate", func() ([]models.AssertionResult, error) {
		raw, err := g.generate(ctx, parts)
		if err != nil {
			return nil, err
		}
		return ParseEvaluation(g.Name(), raw, r)
	})
}

func (g *GeminiJudge) Rank(ctx context.Context, samples []StyleSample) (map[string]int, error) {
	styles := make([]string, 0, len(samples))
	parts := make([]*genai.Part, 0, len(samples)+1)
	for _, s := range samples {
		styles = append(styles, s.Style)
	}
	parts = append(parts, genai.NewPartFromText(BuildRankingPrompt(styles)))
	for _, s := range samples {
		parts = append(parts, genai.NewPartFromBytes(s.Image, s.MediaType))
	}

	return retryWithBackoff(ctx, g.retry, "gemini.rank", func() (map[string]int, error) {
		raw, err := g.generate(ctx, parts)
		if err != nil {
			return nil, err
		}
		return ParseRanking(g.Name(), raw, styles)
	})
}
