package scriptgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	defaultBedrockModel = "anthropic.claude-3-5-haiku-20241022-v1:0"
	defaultMaxTokens    = 1500
)

// bedrockInvoker is the subset of the Bedrock runtime client used here.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGenerator implements Generator using AWS Bedrock with Anthropic models.
type BedrockGenerator struct {
	client      bedrockInvoker
	modelID     string
	maxTokens   int
	temperature float64
}

// NewBedrockGenerator creates a new Bedrock-based generator. Credentials come
// from the default AWS chain unless a static key pair is configured.
func NewBedrockGenerator(ctx context.Context, cfg Config) (*BedrockGenerator, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrockGenerator(client bedrockInvoker, cfg Config) *BedrockGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultBedrockModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &BedrockGenerator{
		client:      client,
		modelID:     model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate sends the prompt to the configured Bedrock model.
func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        g.maxTokens,
		"temperature":       g.temperature,
		"system":            systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": prompt,
					},
				},
			},
		},
	}

	payloadBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", &GenerationError{Backend: BackendBedrock, Reason: ReasonRequest, Err: err}
	}

	output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payloadBytes,
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) && ctx.Err() == nil {
			return "", &GenerationError{
				Backend:    BackendBedrock,
				Reason:     ReasonNonSuccessStatus,
				StatusCode: respErr.HTTPStatusCode(),
				Err:        err,
			}
		}
		return "", transportError(BackendBedrock, err)
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", &GenerationError{Backend: BackendBedrock, Reason: ReasonMalformed, Err: err}
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return finishCompletion(BackendBedrock, text)
}
