package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hairizuanbinnoorazman/ui-testgen/scriptgen"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Providers  ProvidersConfig
	Generation GenerationConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// ProvidersConfig holds the context provider endpoints.
type ProvidersConfig struct {
	StoryURL          string
	UIURL             string
	AutomationURL     string
	StoryTimeout      time.Duration
	UITimeout         time.Duration
	AutomationTimeout time.Duration
}

// GenerationConfig selects the text generation backend.
type GenerationConfig struct {
	Backend      string // "bedrock", "ollama", "openai" or "gemini"
	Model        string
	Timeout      time.Duration
	MaxRuns      int
	MaxTokens    int
	Temperature  float64
	Region       string
	Endpoint     string
	APIKey       string
	AWSAccessKey string
	AWSSecretKey string
}

// GeneratorConfig converts the generation settings for scriptgen.New.
func (g GenerationConfig) GeneratorConfig() scriptgen.Config {
	return scriptgen.Config{
		Backend:      scriptgen.Backend(g.Backend),
		Model:        g.Model,
		Endpoint:     g.Endpoint,
		APIKey:       g.APIKey,
		Region:       g.Region,
		AWSAccessKey: g.AWSAccessKey,
		AWSSecretKey: g.AWSSecretKey,
		MaxTokens:    g.MaxTokens,
		Temperature:  g.Temperature,
	}
}

// CORSConfig holds the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	// A run may include two generation calls plus a retry.
	v.SetDefault("server.write_timeout", "16m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("providers.story_url", "http://localhost:8002/context")
	v.SetDefault("providers.ui_url", "http://localhost:8001/context")
	v.SetDefault("providers.automation_url", "http://localhost:8004/context")
	v.SetDefault("providers.story_timeout", "30s")
	v.SetDefault("providers.ui_timeout", "120s")
	v.SetDefault("providers.automation_timeout", "120s")

	v.SetDefault("generation.backend", "ollama")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.timeout", "300s")
	v.SetDefault("generation.max_concurrent_runs", 4)
	v.SetDefault("generation.max_tokens", 1500)
	v.SetDefault("generation.temperature", 0.2)
	v.SetDefault("generation.region", "us-east-1")
	v.SetDefault("generation.endpoint", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.aws_access_key", "")
	v.SetDefault("generation.aws_secret_key", "")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:8000",
	})

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	// Parse configuration
	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Providers.StoryURL = v.GetString("providers.story_url")
	config.Providers.UIURL = v.GetString("providers.ui_url")
	config.Providers.AutomationURL = v.GetString("providers.automation_url")
	config.Providers.StoryTimeout = v.GetDuration("providers.story_timeout")
	config.Providers.UITimeout = v.GetDuration("providers.ui_timeout")
	config.Providers.AutomationTimeout = v.GetDuration("providers.automation_timeout")

	config.Generation.Backend = v.GetString("generation.backend")
	config.Generation.Model = v.GetString("generation.model")
	config.Generation.Timeout = v.GetDuration("generation.timeout")
	config.Generation.MaxRuns = v.GetInt("generation.max_concurrent_runs")
	config.Generation.MaxTokens = v.GetInt("generation.max_tokens")
	config.Generation.Temperature = v.GetFloat64("generation.temperature")
	config.Generation.Region = v.GetString("generation.region")
	config.Generation.Endpoint = v.GetString("generation.endpoint")
	config.Generation.APIKey = v.GetString("generation.api_key")
	config.Generation.AWSAccessKey = v.GetString("generation.aws_access_key")
	config.Generation.AWSSecretKey = v.GetString("generation.aws_secret_key")

	config.CORS.AllowedOrigins = v.GetStringSlice("cors.allowed_origins")

	return &config, nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

// Summary returns the effective configuration with credentials redacted.
func (c *Config) Summary() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"address":       fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port),
			"read_timeout":  c.Server.ReadTimeout.String(),
			"write_timeout": c.Server.WriteTimeout.String(),
		},
		"log": map[string]interface{}{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"providers": map[string]interface{}{
			"story_url":      c.Providers.StoryURL,
			"ui_url":         c.Providers.UIURL,
			"automation_url": c.Providers.AutomationURL,
		},
		"generation": map[string]interface{}{
			"backend":             c.Generation.Backend,
			"model":               c.Generation.Model,
			"endpoint":            c.Generation.Endpoint,
			"region":              c.Generation.Region,
			"timeout":             c.Generation.Timeout.String(),
			"max_concurrent_runs": c.Generation.MaxRuns,
			"api_key":             redact(c.Generation.APIKey),
			"aws_access_key":      redact(c.Generation.AWSAccessKey),
			"aws_secret_key":      redact(c.Generation.AWSSecretKey),
		},
		"cors": map[string]interface{}{
			"allowed_origins": c.CORS.AllowedOrigins,
		},
	}
}
