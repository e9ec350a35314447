package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/critic"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

// ErrMissingStoryURL is returned for requests without a story URL.
var ErrMissingStoryURL = errors.New("story url is required")

// ContextFetcher loads the three context sources. *contextclient.Client
// satisfies it.
type ContextFetcher interface {
	FetchStory(ctx context.Context, storyURL string) (*contextclient.StoryContext, error)
	FetchUI(ctx context.Context, repoLocation string) (*contextclient.UIContext, error)
	FetchAutomation(ctx context.Context, repoLocation string) (*contextclient.AutomationContext, error)
}

// Config holds pipeline settings.
type Config struct {
	// GenerationTimeout bounds each individual generation call.
	GenerationTimeout time.Duration
	PromptLimits      scriptgen.PromptLimits
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		GenerationTimeout: 300 * time.Second,
		PromptLimits:      scriptgen.DefaultPromptLimits(),
	}
}

// Controller runs the generate, validate, critique and retry sequence.
// It keeps no per-run state; one Controller may serve concurrent calls.
type Controller struct {
	config    Config
	fetcher   ContextFetcher
	generator scriptgen.Generator
	prompts   *scriptgen.PromptBuilder
	logger    logger.Logger
}

// NewController creates a new pipeline controller.
func NewController(cfg Config, fetcher ContextFetcher, generator scriptgen.Generator, log logger.Logger) *Controller {
	return &Controller{
		config:    cfg,
		fetcher:   fetcher,
		generator: generator,
		prompts:   scriptgen.NewPromptBuilder(cfg.PromptLimits),
		logger:    log,
	}
}

// contexts holds what the fetch stage produced for one run.
type contexts struct {
	story      *contextclient.StoryContext
	ui         *contextclient.UIContext
	automation *contextclient.AutomationContext
}

// Generate executes one pipeline run. It never returns an error: every
// fatal condition becomes a Result with status ERROR.
func (c *Controller) Generate(ctx context.Context, req Request) (result Result) {
	runID := uuid.New().String()
	ctx = logger.WithRunID(ctx, runID)
	log := c.logger

	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "pipeline panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			result = Result{Status: StatusError, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	log.Info(ctx, "starting generation pipeline", map[string]interface{}{
		"story_url":  req.StoryURL,
		"ui_repo":    req.UIRepoLocation,
		"automation": req.AutomationRepoLocation,
	})

	result, err := c.run(ctx, log, req)
	if err != nil {
		log.Error(ctx, "generation pipeline failed", map[string]interface{}{
			"error": err.Error(),
		})
		return errorResult(err)
	}

	log.Info(ctx, "generation pipeline completed", map[string]interface{}{
		"story":             result.Story,
		"validation_status": result.ValidationReport.Status,
		"retried":           result.Retried,
	})
	return result
}

func (c *Controller) run(ctx context.Context, log logger.Logger, req Request) (Result, error) {
	if req.StoryURL == "" {
		return Result{}, ErrMissingStoryURL
	}

	// 1. Aggregate context
	cc, err := c.fetchContexts(ctx, log, req)
	if err != nil {
		return Result{}, err
	}

	// 2. Never let the model author selectors without ground truth
	if cc.ui.Empty() {
		log.Warn(ctx, "no UI selectors found, stopping before generation", map[string]interface{}{
			"stage":   string(StageHardStop),
			"ui_repo": req.UIRepoLocation,
		})
		return Result{}, ErrSelectorsUnavailable
	}

	// 3. Scenario
	log.Info(ctx, "generating scenario", map[string]interface{}{
		"stage":     string(StageGeneratingScenario),
		"story":     cc.story.StoryID,
		"selectors": len(cc.ui.Elements),
	})
	feature, err := c.generate(ctx, StageGeneratingScenario, c.prompts.BuildScenarioPrompt(cc.story, cc.ui))
	if err != nil {
		return Result{}, err
	}

	// 4. Step definitions
	log.Info(ctx, "generating step definitions", map[string]interface{}{
		"stage": string(StageGeneratingSteps),
	})
	stepPrompt := c.prompts.BuildStepDefinitionPrompt(feature, cc.ui)
	steps, err := c.generate(ctx, StageGeneratingSteps, stepPrompt)
	if err != nil {
		return Result{}, err
	}

	// 5. Validate and critique
	report := selector.Validate(steps, cc.ui)
	verdict := critic.Review(steps, report)
	log.Info(ctx, "validated step definitions", map[string]interface{}{
		"stage":             string(StageCritiquing),
		"validation_status": report.Status,
		"invalid":           report.InvalidSelectors,
		"issues":            verdict.Issues,
	})

	retried := false
	if verdict.CanRetry {
		// 6. One corrective retry. Its validation is final.
		log.Info(ctx, "retrying step definitions", map[string]interface{}{
			"stage":  string(StageRetryingSteps),
			"issues": verdict.Issues,
		})
		steps, err = c.generate(ctx, StageRetryingSteps, scriptgen.WithCorrection(stepPrompt, report.InvalidSelectors))
		if err != nil {
			return Result{}, err
		}
		report = selector.Validate(steps, cc.ui)
		retried = true
		log.Info(ctx, "revalidated step definitions", map[string]interface{}{
			"stage":             string(StageRevalidating),
			"validation_status": report.Status,
			"invalid":           report.InvalidSelectors,
		})
	}

	return Result{
		Status: StatusSuccess,
		Story:  cc.story.StoryID,
		GeneratedArtifacts: &Artifacts{
			Feature: feature,
			Steps:   steps,
		},
		ValidationReport: &report,
		Retried:          retried,
	}, nil
}

// fetchContexts issues the three fetches concurrently and returns once all
// of them have settled. Story and UI failures are fatal and reported in
// stage order, story first, whichever finished first. The automation
// context is optional and its failure is only logged.
func (c *Controller) fetchContexts(ctx context.Context, log logger.Logger, req Request) (contexts, error) {
	var (
		cc              contexts
		storyErr, uiErr error
		g               errgroup.Group
	)

	// Siblings are not cancelled on failure so each stage reports its own cause.
	g.Go(func() error {
		cc.story, storyErr = c.fetcher.FetchStory(ctx, req.StoryURL)
		return nil
	})

	g.Go(func() error {
		cc.ui, uiErr = c.fetcher.FetchUI(ctx, req.UIRepoLocation)
		return nil
	})

	if req.AutomationRepoLocation != "" {
		g.Go(func() error {
			automation, err := c.fetcher.FetchAutomation(ctx, req.AutomationRepoLocation)
			if err != nil {
				log.Warn(ctx, "ignoring automation context failure", map[string]interface{}{
					"stage": string(StageFetchingAutomation),
					"error": err.Error(),
				})
				return nil
			}
			cc.automation = automation
			return nil
		})
	}

	g.Wait()

	if storyErr != nil {
		return contexts{}, &StageError{Stage: StageFetchingStory, Err: storyErr}
	}
	if uiErr != nil {
		return contexts{}, &StageError{Stage: StageFetchingUI, Err: uiErr}
	}

	if cc.automation != nil {
		// Not used by the prompts; recorded for traceability only.
		log.Debug(ctx, "automation context loaded", map[string]interface{}{
			"framework":      cc.automation.Framework,
			"existing_steps": len(cc.automation.ExistingSteps),
			"feature_files":  len(cc.automation.FeatureFiles),
		})
	}
	return cc, nil
}

// generate makes one bounded generation call.
func (c *Controller) generate(ctx context.Context, stage Stage, prompt string) (string, error) {
	if c.config.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.GenerationTimeout)
		defer cancel()
	}

	text, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", &StageError{Stage: stage, Err: err}
	}
	return text, nil
}
