package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set with -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func versionString() string {
	return fmt.Sprintf("testgen %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

var (
	flagURL   string
	flagToken string
	flagJSON  bool
	flagDebug bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "testgen",
		Short: "CLI for the UI test generation service",
		Long:  "A command-line interface for generating Cucumber scenarios and Selenium step definitions from user stories.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(versionString() + "\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Service URL (env: UI_TESTGEN_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bearer token sent to the service (env: UI_TESTGEN_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if flagJSON {
				printJSON(map[string]string{"version": Version, "commit": Commit, "build_date": BuildDate})
				return
			}
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(versionCmd, newConfigCmd(), newGenerateCmd(), newHealthCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// cobra has already printed the error
		stop()
		os.Exit(1)
	}
}
