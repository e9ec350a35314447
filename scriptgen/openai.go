package scriptgen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultOpenAIEndpoint = "https://api.groq.com/openai/v1"
	defaultOpenAIModel    = "llama-3.1-8b-instant"
)

// OpenAIGenerator implements Generator for any OpenAI-compatible chat
// completions API (Groq, OpenAI, vLLM, LM Studio).
type OpenAIGenerator struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIGenerator creates a new chat-completions generator.
func NewOpenAIGenerator(cfg Config) (*OpenAIGenerator, error) {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if cfg.APIKey == "" && endpoint == defaultOpenAIEndpoint {
		return nil, fmt.Errorf("openai: api key is required for %s", endpoint)
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenAIGenerator{
		httpClient:  &http.Client{},
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Generate calls /chat/completions and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := postJSON(ctx, g.httpClient, BackendOpenAI, g.endpoint+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: BackendOpenAI, Reason: ReasonEmptyCompletion}
	}
	return finishCompletion(BackendOpenAI, resp.Choices[0].Message.Content)
}
