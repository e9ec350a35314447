package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-testgen/cmd/backend/handlers"
	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/pipeline"
	"github.com/hairizuanbinnoorazman/ui-testgen/scriptgen"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.NewLogrusLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Initialize generation backend
	generator, err := scriptgen.New(ctx, cfg.Generation.GeneratorConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	log.Info(ctx, "generator initialized", map[string]interface{}{
		"backend": cfg.Generation.Backend,
		"model":   cfg.Generation.Model,
	})

	// Initialize context client and pipeline
	fetcher := contextclient.NewClient(contextclient.Config{
		StoryURL:          cfg.Providers.StoryURL,
		UIURL:             cfg.Providers.UIURL,
		AutomationURL:     cfg.Providers.AutomationURL,
		StoryTimeout:      cfg.Providers.StoryTimeout,
		UITimeout:         cfg.Providers.UITimeout,
		AutomationTimeout: cfg.Providers.AutomationTimeout,
	}, log)

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.GenerationTimeout = cfg.Generation.Timeout
	controller := pipeline.NewController(pipelineCfg, fetcher, generator, log)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	runner, err := pipeline.NewMetrics(pipeline.NewLimiter(controller, cfg.Generation.MaxRuns, log), registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	log.Info(ctx, "pipeline initialized", map[string]interface{}{
		"generation_timeout":  cfg.Generation.Timeout.String(),
		"max_concurrent_runs": cfg.Generation.MaxRuns,
	})

	// Setup router
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router := handlers.NewRouter(handlers.NewGenerateHandler(runner, log), metricsHandler, cfg.CORS.AllowedOrigins, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return httpserver.Run(ctx, server, log)
}
