package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-testgen/scriptgen"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8002/context", cfg.Providers.StoryURL)
	assert.Equal(t, "http://localhost:8001/context", cfg.Providers.UIURL)
	assert.Equal(t, "http://localhost:8004/context", cfg.Providers.AutomationURL)
	assert.Equal(t, 30*time.Second, cfg.Providers.StoryTimeout)
	assert.Equal(t, 120*time.Second, cfg.Providers.UITimeout)
	assert.Equal(t, 120*time.Second, cfg.Providers.AutomationTimeout)
	assert.Equal(t, 300*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 1500, cfg.Generation.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Generation.Temperature, 1e-9)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
generation:
  backend: bedrock
  model: anthropic.claude-3-haiku-20240307-v1:0
  timeout: 90s
cors:
  allowed_origins:
    - https://testgen.example.com
`), 0o600))

	t.Setenv("PROVIDERS_UI_URL", "http://ui-provider:8001/context")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "bedrock", cfg.Generation.Backend)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", cfg.Generation.Model)
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, []string{"https://testgen.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "http://ui-provider:8001/context", cfg.Providers.UIURL)
}

func TestConfigSummaryRedactsCredentials(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Generation: GenerationConfig{
			Backend:      "bedrock",
			Model:        "anthropic.claude-3-haiku",
			APIKey:       "",
			AWSAccessKey: "AKIAEXAMPLE",
			AWSSecretKey: "secret",
		},
	}

	summary := cfg.Summary()
	gen := summary["generation"].(map[string]interface{})
	assert.Equal(t, "bedrock", gen["backend"])
	assert.Equal(t, "", gen["api_key"])
	assert.Equal(t, "****", gen["aws_access_key"])
	assert.Equal(t, "****", gen["aws_secret_key"])
	assert.Equal(t, "0.0.0.0:8000", summary["server"].(map[string]interface{})["address"])
}

func TestGeneratorConfig(t *testing.T) {
	t.Parallel()

	g := GenerationConfig{
		Backend:     "ollama",
		Model:       "llama3",
		Endpoint:    "http://ollama:11434",
		MaxTokens:   1500,
		Temperature: 0.2,
	}

	got := g.GeneratorConfig()
	assert.Equal(t, scriptgen.BackendOllama, got.Backend)
	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "http://ollama:11434", got.Endpoint)
	assert.Equal(t, 1500, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
}
