package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration shared by the context providers.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Jira   JiraConfig
	GitHub GitHubConfig
	Scan   ScanConfig
}

// ServerConfig holds HTTP server configuration. Each provider listens on
// its own port.
type ServerConfig struct {
	Host           string
	StoryPort      int
	UIPort         int
	AutomationPort int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// JiraConfig holds the Jira instance issue links must point at and its
// credentials.
type JiraConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

// GitHubConfig holds the accepted GitHub web hosts. The token is optional.
type GitHubConfig struct {
	Hosts []string
	Token string
}

// ScanConfig controls repository checkouts.
type ScanConfig struct {
	WorkDir      string
	CloneTimeout time.Duration
	CloneDepth   int
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("providers")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.story_port", 8002)
	v.SetDefault("server.ui_port", 8001)
	v.SetDefault("server.automation_port", 8004)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("jira.base_url", "")
	v.SetDefault("jira.email", "")
	v.SetDefault("jira.api_token", "")

	v.SetDefault("github.hosts", []string{"github.com"})
	v.SetDefault("github.token", "")

	v.SetDefault("scan.work_dir", "")
	v.SetDefault("scan.clone_timeout", "120s")
	v.SetDefault("scan.clone_depth", 1)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.StoryPort = v.GetInt("server.story_port")
	config.Server.UIPort = v.GetInt("server.ui_port")
	config.Server.AutomationPort = v.GetInt("server.automation_port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Jira.BaseURL = v.GetString("jira.base_url")
	config.Jira.Email = v.GetString("jira.email")
	config.Jira.APIToken = v.GetString("jira.api_token")

	config.GitHub.Hosts = v.GetStringSlice("github.hosts")
	config.GitHub.Token = v.GetString("github.token")

	config.Scan.WorkDir = v.GetString("scan.work_dir")
	config.Scan.CloneTimeout = v.GetDuration("scan.clone_timeout")
	config.Scan.CloneDepth = v.GetInt("scan.clone_depth")

	return &config, nil
}
