package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-testgen/pipeline"
)

func newGenerateCmd() *cobra.Command {
	var (
		storyURL       string
		uiRepo         string
		automationRepo string
		outDir         string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a feature file and step definitions for a story",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := GenerateRequest{
				StoryURL:               strings.TrimSpace(storyURL),
				UIRepoLocation:         withConfigDefault(uiRepo, "ui_repo"),
				AutomationRepoLocation: withConfigDefault(automationRepo, "automation_repo"),
			}
			if req.UIRepoLocation == "" {
				return fmt.Errorf("a UI repository is required: pass --ui-repo or set ui_repo in the config file")
			}
			outDir = withConfigDefault(outDir, "out_dir")

			res, err := generate(cmd.Context(), getClient(), req)
			if err != nil {
				return err
			}

			if flagJSON {
				printJSON(res)
			} else {
				renderResult(os.Stdout, res)
			}

			if outDir != "" && res.GeneratedArtifacts != nil {
				paths, err := writeArtifacts(outDir, res)
				if err != nil {
					return err
				}
				if !flagJSON {
					for _, p := range paths {
						printMessage("Wrote " + p)
					}
				}
			}

			if !res.Succeeded() {
				return fmt.Errorf("generation failed: %s", res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storyURL, "story-url", "", "Jira or GitHub issue link (required)")
	cmd.Flags().StringVar(&uiRepo, "ui-repo", "", "UI repository path or git URL (default: ui_repo from config)")
	cmd.Flags().StringVar(&automationRepo, "automation-repo", "", "Existing automation repository path or git URL (default: automation_repo from config)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the generated files into (default: out_dir from config)")
	cmd.MarkFlagRequired("story-url")

	return cmd
}

func generate(ctx context.Context, c *Client, req GenerateRequest) (pipeline.Result, error) {
	body, err := c.Post(ctx, "/api/v1/generate", req)
	if err != nil {
		return pipeline.Result{}, err
	}

	var res pipeline.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return res, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// artifactNames returns the feature file name and the step definition file
// name for a story. The steps file name is a valid Java class name.
func artifactNames(storyID string) (string, string) {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(storyID, "_"), "_.")
	if base == "" {
		base = "generated"
	}

	var class strings.Builder
	upperNext := true
	for _, r := range storyID {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		class.WriteRune(r)
	}
	name := class.String()
	if name == "" {
		name = "Generated"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "Story" + name
	}

	return base + ".feature", name + "Steps.java"
}

func writeArtifacts(dir string, res pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	featureName, stepsName := artifactNames(res.Story)
	files := []struct {
		name    string
		content string
	}{
		{featureName, res.GeneratedArtifacts.Feature},
		{stepsName, res.GeneratedArtifacts.Steps},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		content := strings.TrimRight(f.content, "\n") + "\n"
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := health(cmd.Context(), getClient())
			if err != nil {
				return err
			}
			if flagJSON {
				printJSON(HealthResponse{Status: status})
				return nil
			}
			printMessage(fmt.Sprintf("%s %s", getConfigURL(), statusBadge(status == "UP", status)))
			return nil
		},
	}
}

func health(ctx context.Context, c *Client) (string, error) {
	body, err := c.Get(ctx, "/health", nil)
	if err != nil {
		return "", err
	}
	var resp HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return resp.Status, nil
}
