package reposcan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
)

const (
	uiPattern           = "**/*.{jsx,tsx}"
	featurePattern      = "**/*.feature"
	stepDefPattern      = "**/*.java"
	automationFramework = "Cucumber + Selenium"
)

// skippedDirs are never descended into when scanning.
var skippedDirs = []string{"node_modules", ".git", "dist", "build", "target"}

// selectorAttribute pairs an attribute with how its value is rendered as CSS.
type selectorAttribute struct {
	name    string
	pattern *regexp.Regexp
	render  func(value string) string
}

// The leading class keeps id= from matching the tail of data-testid= and
// name= from matching data-name=.
var selectorAttributes = []selectorAttribute{
	{
		name:    "data-testid",
		pattern: regexp.MustCompile(`(?:^|[^\w-])data-testid\s*=\s*["']([^"'{}]+)["']`),
		render:  func(v string) string { return fmt.Sprintf(`[data-testid="%s"]`, v) },
	},
	{
		name:    "id",
		pattern: regexp.MustCompile(`(?:^|[^\w-])id\s*=\s*["']([^"'{}]+)["']`),
		render:  func(v string) string { return "#" + v },
	},
	{
		name:    "name",
		pattern: regexp.MustCompile(`(?:^|[^\w-])name\s*=\s*["']([^"'{}]+)["']`),
		render:  func(v string) string { return fmt.Sprintf(`[name="%s"]`, v) },
	},
	{
		name:    "aria-label",
		pattern: regexp.MustCompile(`(?:^|[^\w-])aria-label\s*=\s*["']([^"'{}]+)["']`),
		render:  func(v string) string { return fmt.Sprintf(`[aria-label="%s"]`, v) },
	},
}

var stepAnnotation = regexp.MustCompile(`@(Given|When|Then|And|But)\(\s*"((?:[^"\\]|\\.)+)"\s*\)`)

// ExtractSelectors adds every selector attribute found in content to
// elements, keyed by "<attribute>:<value>".
func ExtractSelectors(content string, elements map[string]string) {
	for _, attr := range selectorAttributes {
		for _, m := range attr.pattern.FindAllStringSubmatch(content, -1) {
			value := strings.TrimSpace(m[1])
			if value == "" {
				continue
			}
			elements[attr.name+":"+value] = attr.render(value)
		}
	}
}

// StepPhrases returns the Cucumber step phrases annotated in Java source.
func StepPhrases(content string) []string {
	matches := stepAnnotation.FindAllStringSubmatch(content, -1)
	phrases := make([]string, 0, len(matches))
	for _, m := range matches {
		phrases = append(phrases, strings.ReplaceAll(m[2], `\"`, `"`))
	}
	return phrases
}

// ScanUI builds the UI context for the repository at location.
func (s *Scanner) ScanUI(ctx context.Context, location string) (*contextclient.UIContext, error) {
	co, err := s.Checkout(ctx, location)
	if err != nil {
		return nil, err
	}
	defer co.Close()

	files, err := matchFiles(co.Dir, uiPattern)
	if err != nil {
		return nil, err
	}

	elements := map[string]string{}
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(co.Dir, filepath.FromSlash(file)))
		if err != nil {
			s.logger.Warn(ctx, "skipping unreadable file", map[string]interface{}{
				"file":  file,
				"error": err.Error(),
			})
			continue
		}
		ExtractSelectors(string(content), elements)
	}

	s.logger.Info(ctx, "scanned UI repository", map[string]interface{}{
		"repo":      location,
		"files":     len(files),
		"selectors": len(elements),
	})

	return &contextclient.UIContext{
		Repo:          location,
		SelectorCount: len(elements),
		Elements:      elements,
	}, nil
}

// ScanAutomation builds the automation context for the repository at location.
func (s *Scanner) ScanAutomation(ctx context.Context, location string) (*contextclient.AutomationContext, error) {
	co, err := s.Checkout(ctx, location)
	if err != nil {
		return nil, err
	}
	defer co.Close()

	features, err := matchFiles(co.Dir, featurePattern)
	if err != nil {
		return nil, err
	}
	featureFiles := make([]string, 0, len(features))
	for _, f := range features {
		featureFiles = append(featureFiles, path.Base(f))
	}

	javaFiles, err := matchFiles(co.Dir, stepDefPattern)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	steps := []string{}
	for _, file := range javaFiles {
		content, err := os.ReadFile(filepath.Join(co.Dir, filepath.FromSlash(file)))
		if err != nil {
			continue
		}
		for _, phrase := range StepPhrases(string(content)) {
			if !seen[phrase] {
				seen[phrase] = true
				steps = append(steps, phrase)
			}
		}
	}
	sort.Strings(steps)

	s.logger.Info(ctx, "scanned automation repository", map[string]interface{}{
		"repo":          location,
		"feature_files": len(featureFiles),
		"steps":         len(steps),
	})

	return &contextclient.AutomationContext{
		Repo:          location,
		Framework:     automationFramework,
		FeatureFiles:  featureFiles,
		ExistingSteps: steps,
	}, nil
}

// matchFiles returns slash-separated paths relative to dir, sorted, with
// vendored and build directories left out.
func matchFiles(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if inSkippedDir(m) {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

func inSkippedDir(p string) bool {
	for _, segment := range strings.Split(path.Dir(p), "/") {
		for _, skipped := range skippedDirs {
			if segment == skipped {
				return true
			}
		}
	}
	return false
}
