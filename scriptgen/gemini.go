package scriptgen

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiModels is the subset of genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements Generator using Google's Gemini API.
type GeminiGenerator struct {
	models      geminiModels
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiGenerator creates a new Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg Config) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGeminiGenerator(client.Models, cfg), nil
}

func newGeminiGenerator(models geminiModels, cfg Config) *GeminiGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &GeminiGenerator{
		models:      models,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate sends the prompt as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(g.temperature)),
			MaxOutputTokens:   int32(g.maxTokens),
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code != 0 {
			return "", &GenerationError{
				Backend:    BackendGemini,
				Reason:     ReasonNonSuccessStatus,
				StatusCode: apiErr.Code,
				Err:        err,
			}
		}
		return "", transportError(BackendGemini, err)
	}
	if result == nil {
		return "", &GenerationError{Backend: BackendGemini, Reason: ReasonEmptyCompletion}
	}

	return finishCompletion(BackendGemini, result.Text())
}
