package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrUnsupportedBackend is returned when the configured backend is unknown.
	ErrUnsupportedBackend = errors.New("unsupported generation backend")

	// ErrMissingModel is returned when no model is configured for a backend that needs one.
	ErrMissingModel = errors.New("generation model is required")
)

// Generator sends a prompt to a text-generation backend and returns the completion.
// Implementations can use different backends (AWS Bedrock, Ollama, OpenAI-compatible APIs, Gemini).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Backend names a generation backend implementation.
type Backend string

const (
	BackendBedrock Backend = "bedrock"
	BackendOllama  Backend = "ollama"
	BackendOpenAI  Backend = "openai"
	BackendGemini  Backend = "gemini"
)

// IsValid checks if the backend is supported.
func (b Backend) IsValid() bool {
	switch b {
	case BackendBedrock, BackendOllama, BackendOpenAI, BackendGemini:
		return true
	default:
		return false
	}
}

// Reason classifies a generation failure.
type Reason string

const (
	ReasonRequest          Reason = "request"
	ReasonTimeout          Reason = "timeout"
	ReasonTransport        Reason = "transport"
	ReasonNonSuccessStatus Reason = "non_success_status"
	ReasonMalformed        Reason = "malformed_response"
	ReasonEmptyCompletion  Reason = "empty_completion"
)

// GenerationError is returned by every Generator implementation.
type GenerationError struct {
	Backend    Backend
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	switch e.Reason {
	case ReasonEmptyCompletion:
		return fmt.Sprintf("%s: empty completion", e.Backend)
	case ReasonNonSuccessStatus:
		return fmt.Sprintf("%s: generation failed with status %d: %v", e.Backend, e.StatusCode, e.Err)
	case ReasonTimeout:
		return fmt.Sprintf("%s: generation timed out: %v", e.Backend, e.Err)
	default:
		return fmt.Sprintf("%s: generation failed (%s): %v", e.Backend, e.Reason, e.Err)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Config selects and configures a generation backend.
type Config struct {
	Backend      Backend
	Model        string
	Endpoint     string
	APIKey       string
	Region       string
	AWSAccessKey string
	AWSSecretKey string
	MaxTokens    int
	Temperature  float64
}

// New creates the Generator named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Backend {
	case BackendBedrock:
		gen, err = NewBedrockGenerator(ctx, cfg)
	case BackendOllama:
		gen, err = NewOllamaGenerator(cfg)
	case BackendOpenAI:
		gen, err = NewOpenAIGenerator(cfg)
	case BackendGemini:
		gen, err = NewGeminiGenerator(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// finishCompletion strips fences and rejects empty completions.
func finishCompletion(backend Backend, text string) (string, error) {
	text = StripCodeFence(text)
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Backend: backend, Reason: ReasonEmptyCompletion}
	}
	return text, nil
}

// transportError classifies a failed call as timeout or transport.
func transportError(backend Backend, err error) *GenerationError {
	reason := ReasonTransport
	if errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonTimeout
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			reason = ReasonTimeout
		}
	}
	return &GenerationError{Backend: backend, Reason: reason, Err: err}
}
