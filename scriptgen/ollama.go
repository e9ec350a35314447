package scriptgen

import (
	"context"
	"net/http"
	"strings"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "deepseek-coder:6.7b"
)

// OllamaGenerator implements Generator against a local Ollama server.
type OllamaGenerator struct {
	httpClient  *http.Client
	endpoint    string
	model       string
	maxTokens   int
	temperature float64
}

// NewOllamaGenerator creates a new Ollama-backed generator.
func NewOllamaGenerator(cfg Config) (*OllamaGenerator, error) {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OllamaGenerator{
		httpClient:  &http.Client{},
		endpoint:    endpoint,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

// Generate calls /api/generate with streaming disabled.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{
		Model:  g.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: g.temperature,
			TopP:        0.9,
			NumPredict:  g.maxTokens,
		},
	}

	var resp struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := postJSON(ctx, g.httpClient, BackendOllama, g.endpoint+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}

	return finishCompletion(BackendOllama, resp.Response)
}
