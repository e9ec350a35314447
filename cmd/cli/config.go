package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = ".ui-testgen"

var cfg *viper.Viper

// configTemplate is written by "config init". Repository and output keys
// are used by "generate" when the matching flag is not given.
const configTemplate = `# testgen configuration
url: http://localhost:8000
token: ""
# A run may include several generation calls.
timeout: 15m

# Defaults for "testgen generate".
ui_repo: ""
automation_repo: ""
out_dir: ""
`

func initConfig() error {
	cfg = viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		cfg.AddConfigPath(home)
	}
	cfg.AddConfigPath(".")

	cfg.SetDefault("url", "http://localhost:8000")
	cfg.SetDefault("token", "")
	cfg.SetDefault("timeout", "15m")
	cfg.SetDefault("ui_repo", "")
	cfg.SetDefault("automation_repo", "")
	cfg.SetDefault("out_dir", "")

	cfg.SetEnvPrefix("UI_TESTGEN")
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flagURL != "" {
		cfg.Set("url", flagURL)
	}
	if flagToken != "" {
		cfg.Set("token", flagToken)
	}
	return nil
}

func getConfigURL() string {
	return strings.TrimRight(cfg.GetString("url"), "/")
}

func getConfigToken() string {
	return cfg.GetString("token")
}

func getConfigTimeout() time.Duration {
	return cfg.GetDuration("timeout")
}

// withConfigDefault returns flagValue, or the configured value for key when
// the flag was left empty.
func withConfigDefault(flagValue, key string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if cfg == nil {
		return ""
	}
	return strings.TrimSpace(cfg.GetString(key))
}

func maskToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) > 8:
		return token[:4] + "..." + token[len(token)-4:]
	default:
		return "****"
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file template at ~/" + configName + ".yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}

			configPath := filepath.Join(home, configName+".yaml")
			if _, err := os.Stat(configPath); err == nil {
				printMessage("Config file already exists at " + configPath)
				return nil
			}

			if err := os.WriteFile(configPath, []byte(configTemplate), 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			printMessage("Config file created at " + configPath)
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := map[string]string{
				"url":             getConfigURL(),
				"token":           maskToken(getConfigToken()),
				"timeout":         getConfigTimeout().String(),
				"ui_repo":         orNone(cfg.GetString("ui_repo")),
				"automation_repo": orNone(cfg.GetString("automation_repo")),
				"out_dir":         orNone(cfg.GetString("out_dir")),
				"config_file":     orNone(cfg.ConfigFileUsed()),
			}
			if flagJSON {
				printJSON(settings)
				return nil
			}

			rows := [][]string{}
			for _, key := range []string{"url", "token", "timeout", "ui_repo", "automation_repo", "out_dir", "config_file"} {
				rows = append(rows, []string{key, settings[key]})
			}
			printTable(os.Stdout, []string{"KEY", "VALUE"}, rows)
			return nil
		},
	}
}
