package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/provider"
	"github.com/hairizuanbinnoorazman/ui-testgen/reposcan"
)

var (
	// Version is the application version (set during build).
	Version = "dev"

	// Commit is the git commit hash (set during build).
	Commit = "unknown"

	// BuildDate is the build date (set during build).
	BuildDate = "unknown"
)

var (
	configFile string
	flagPort   int
)

var rootCmd = &cobra.Command{
	Use:   "providers",
	Short: "Context providers for the UI test generation service",
	Long:  `Serves story, UI selector and automation context over GET /context.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().IntVarP(&flagPort, "port", "p", 0, "listen port (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "story",
		Short: "Serve story context from Jira or GitHub issue links",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvider("story", func(cfg *Config, log logger.Logger) (http.Handler, int) {
				factory := provider.NewTrackerFactory(provider.TrackerConfig{
					JiraBaseURL:  cfg.Jira.BaseURL,
					JiraEmail:    cfg.Jira.Email,
					JiraAPIToken: cfg.Jira.APIToken,
					GitHubHosts:  cfg.GitHub.Hosts,
					GitHubToken:  cfg.GitHub.Token,
				})
				return provider.NewStoryRouter(provider.NewStoryHandler(factory, log), log), cfg.Server.StoryPort
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ui",
		Short: "Serve UI selectors scanned from a frontend repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvider("ui", func(cfg *Config, log logger.Logger) (http.Handler, int) {
				h := provider.NewRepoHandler(newScanner(cfg, log), log)
				return provider.NewUIRouter(h, log), cfg.Server.UIPort
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "automation",
		Short: "Serve feature files and step phrases scanned from an automation repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvider("automation", func(cfg *Config, log logger.Logger) (http.Handler, int) {
				h := provider.NewRepoHandler(newScanner(cfg, log), log)
				return provider.NewAutomationRouter(h, log), cfg.Server.AutomationPort
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("providers %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	})
}

func newScanner(cfg *Config, log logger.Logger) *reposcan.Scanner {
	scanCfg := reposcan.DefaultConfig()
	if cfg.Scan.WorkDir != "" {
		scanCfg.WorkDir = cfg.Scan.WorkDir
	}
	scanCfg.CloneTimeout = cfg.Scan.CloneTimeout
	scanCfg.CloneDepth = cfg.Scan.CloneDepth
	return reposcan.NewScanner(scanCfg, log)
}

func runProvider(role string, build func(*Config, logger.Logger) (http.Handler, int)) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogrusLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	handler, port := build(cfg, log)
	if flagPort != 0 {
		port = flagPort
	}

	log.Info(ctx, "starting provider", map[string]interface{}{
		"provider": role,
		"version":  Version,
		"commit":   Commit,
		"port":     port,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return httpserver.Run(ctx, server, log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
