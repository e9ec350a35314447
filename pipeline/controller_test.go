package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

func TestMain(m *testing.M) {
	// go.opencensus.io, pulled in by the Gemini client, starts its stats
	// worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const (
	loginSelector = `[data-testid="login"]`
	validSteps    = `@When("the user clicks login")
public void clickLogin() {
    driver.findElement(By.cssSelector("[data-testid=\"login\"]")).click();
}`
	invalidSteps = `@When("the user clicks login")
public void clickLogin() {
    driver.findElement(By.cssSelector("#submit")).click();
}`
	feature = "Feature: Login\n  Scenario: ok\n    When the user clicks login"
)

type fakeFetcher struct {
	story         *contextclient.StoryContext
	storyErr      error
	storyDelay    time.Duration
	ui            *contextclient.UIContext
	uiErr         error
	automation    *contextclient.AutomationContext
	automationErr error

	mu              sync.Mutex
	automationCalls int
}

func (f *fakeFetcher) FetchStory(ctx context.Context, storyURL string) (*contextclient.StoryContext, error) {
	if f.storyDelay > 0 {
		time.Sleep(f.storyDelay)
	}
	return f.story, f.storyErr
}

func (f *fakeFetcher) FetchUI(ctx context.Context, repoLocation string) (*contextclient.UIContext, error) {
	return f.ui, f.uiErr
}

func (f *fakeFetcher) FetchAutomation(ctx context.Context, repoLocation string) (*contextclient.AutomationContext, error) {
	f.mu.Lock()
	f.automationCalls++
	f.mu.Unlock()
	return f.automation, f.automationErr
}

// fakeGenerator answers by prompt kind and counts calls.
type fakeGenerator struct {
	scenario    string
	steps       string
	retry       string
	scenarioErr error
	stepsErr    error
	retryErr    error

	mu            sync.Mutex
	scenarioCalls int
	stepCalls     int
	retryCalls    int
	prompts       []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)

	switch {
	case strings.Contains(prompt, "IMPORTANT: Fix selector issues"):
		g.retryCalls++
		return g.retry, g.retryErr
	case strings.Contains(prompt, "<feature>"):
		g.stepCalls++
		return g.steps, g.stepsErr
	default:
		g.scenarioCalls++
		return g.scenario, g.scenarioErr
	}
}

func (g *fakeGenerator) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scenarioCalls + g.stepCalls + g.retryCalls
}

func loginUI() *contextclient.UIContext {
	return &contextclient.UIContext{
		Repo:          "./web",
		SelectorCount: 1,
		Elements:      map[string]string{"data-testid:login": loginSelector},
	}
}

func loginStory() *contextclient.StoryContext {
	return &contextclient.StoryContext{StoryID: "KAN-1", Summary: "User can log in"}
}

func loginRequest() Request {
	return Request{StoryURL: "https://example.atlassian.net/browse/KAN-1", UIRepoLocation: "./web"}
}

func newTestController(fetcher ContextFetcher, gen scriptgen.Generator) (*Controller, *logger.TestLogger) {
	log := logger.NewTestLogger()
	return NewController(DefaultConfig(), fetcher, gen, log), log
}

func TestGenerateHardStopsWithoutSelectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ui   *contextclient.UIContext
	}{
		{name: "empty elements", ui: &contextclient.UIContext{Repo: "./web", Elements: map[string]string{}}},
		{name: "nil elements", ui: &contextclient.UIContext{Repo: "./web"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := &fakeGenerator{scenario: feature, steps: validSteps}
			c, log := newTestController(&fakeFetcher{story: loginStory(), ui: tt.ui}, gen)

			result := c.Generate(context.Background(), loginRequest())

			assert.Equal(t, Result{
				Status:  StatusError,
				Message: "UI selectors unavailable. Cannot safely generate test automation.",
			}, result)
			assert.Equal(t, 0, gen.total())
			assert.True(t, log.HasMessage("warn", "no UI selectors found, stopping before generation"))
		})
	}
}

func TestGenerateValidFirstAttempt(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{scenario: feature, steps: validSteps}
	c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, gen)

	result := c.Generate(context.Background(), loginRequest())

	require.Equal(t, StatusSuccess, result.Status, result.Message)
	assert.Equal(t, "KAN-1", result.Story)
	assert.Equal(t, &Artifacts{Feature: feature, Steps: validSteps}, result.GeneratedArtifacts)
	require.NotNil(t, result.ValidationReport)
	assert.Equal(t, selector.StatusPass, result.ValidationReport.Status)
	assert.Equal(t, []string{loginSelector}, result.ValidationReport.UsedSelectors)
	assert.False(t, result.Retried)

	assert.Equal(t, 1, gen.scenarioCalls)
	assert.Equal(t, 1, gen.stepCalls)
	assert.Equal(t, 0, gen.retryCalls)

	// the scenario feeds the step-definition prompt
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], feature)
}

func TestGenerateRetriesOnceOnInvalidSelectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		retry      string
		wantStatus selector.Status
		wantBad    []string
	}{
		{name: "retry fixes selectors", retry: validSteps, wantStatus: selector.StatusPass, wantBad: []string{}},
		{name: "retry still invalid", retry: invalidSteps, wantStatus: selector.StatusFail, wantBad: []string{"#submit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := &fakeGenerator{scenario: feature, steps: invalidSteps, retry: tt.retry}
			c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, gen)

			result := c.Generate(context.Background(), loginRequest())

			require.Equal(t, StatusSuccess, result.Status, result.Message)
			assert.True(t, result.Retried)
			assert.Equal(t, tt.retry, result.GeneratedArtifacts.Steps)
			assert.Equal(t, tt.wantStatus, result.ValidationReport.Status)
			assert.Equal(t, tt.wantBad, result.ValidationReport.InvalidSelectors)

			assert.Equal(t, 1, gen.stepCalls)
			assert.Equal(t, 1, gen.retryCalls)

			retryPrompt := gen.prompts[len(gen.prompts)-1]
			assert.True(t, strings.HasPrefix(retryPrompt, gen.prompts[1]), "retry must extend the original step prompt")
			assert.Contains(t, retryPrompt, "- #submit\n")
		})
	}
}

func TestGenerateRetriesOnRuleViolation(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		scenario: feature,
		steps:    "RULE VIOLATION: cannot find a selector for the dashboard",
		retry:    validSteps,
	}
	c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, gen)

	result := c.Generate(context.Background(), loginRequest())

	require.Equal(t, StatusSuccess, result.Status)
	assert.True(t, result.Retried)
	assert.Equal(t, 1, gen.retryCalls)
	assert.Equal(t, selector.StatusPass, result.ValidationReport.Status)
}

func TestGenerateFetchFailures(t *testing.T) {
	t.Parallel()

	upstream := &contextclient.FetchError{
		Role:       contextclient.RoleStory,
		URL:        "http://stories.local/context",
		Reason:     contextclient.ReasonNonSuccessStatus,
		StatusCode: http.StatusBadGateway,
		Body:       "bad gateway",
	}

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    []string
	}{
		{
			name:    "story failure",
			fetcher: &fakeFetcher{storyErr: upstream, ui: loginUI()},
			want:    []string{"fetching_story", "http://stories.local/context", "502"},
		},
		{
			name:    "ui failure",
			fetcher: &fakeFetcher{story: loginStory(), uiErr: errors.New("connection refused")},
			want:    []string{"fetching_ui", "connection refused"},
		},
		{
			name: "slow story failure wins over fast ui failure",
			fetcher: &fakeFetcher{
				storyErr:   upstream,
				storyDelay: 30 * time.Millisecond,
				uiErr:      errors.New("ui connection refused"),
			},
			want: []string{"fetching_story failed", "http://stories.local/context", "502"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen := &fakeGenerator{scenario: feature, steps: validSteps}
			c, _ := newTestController(tt.fetcher, gen)

			result := c.Generate(context.Background(), loginRequest())

			assert.Equal(t, StatusError, result.Status)
			for _, w := range tt.want {
				assert.Contains(t, result.Message, w)
			}
			if tt.fetcher.storyErr != nil {
				assert.NotContains(t, result.Message, "fetching_ui")
			}
			assert.Nil(t, result.GeneratedArtifacts)
			assert.Equal(t, 0, gen.total())
		})
	}
}

func TestGenerateIgnoresAutomationFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		story:         loginStory(),
		ui:            loginUI(),
		automationErr: errors.New("clone failed"),
	}
	gen := &fakeGenerator{scenario: feature, steps: validSteps}
	c, log := newTestController(fetcher, gen)

	req := loginRequest()
	req.AutomationRepoLocation = "./e2e"
	result := c.Generate(context.Background(), req)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, fetcher.automationCalls)
	assert.True(t, log.HasMessage("warn", "ignoring automation context failure"))
}

func TestGenerateSkipsAutomationWithoutLocation(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{story: loginStory(), ui: loginUI()}
	c, _ := newTestController(fetcher, &fakeGenerator{scenario: feature, steps: validSteps})

	result := c.Generate(context.Background(), loginRequest())

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 0, fetcher.automationCalls)
}

func TestGenerateGenerationFailures(t *testing.T) {
	t.Parallel()

	backendErr := &scriptgen.GenerationError{
		Backend: scriptgen.BackendOllama,
		Reason:  scriptgen.ReasonEmptyCompletion,
	}

	tests := []struct {
		name      string
		gen       *fakeGenerator
		wantStage Stage
		wantCalls int
	}{
		{
			name:      "scenario",
			gen:       &fakeGenerator{scenarioErr: backendErr},
			wantStage: StageGeneratingScenario,
			wantCalls: 1,
		},
		{
			name:      "steps",
			gen:       &fakeGenerator{scenario: feature, stepsErr: backendErr},
			wantStage: StageGeneratingSteps,
			wantCalls: 2,
		},
		{
			name:      "retry",
			gen:       &fakeGenerator{scenario: feature, steps: invalidSteps, retryErr: backendErr},
			wantStage: StageRetryingSteps,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, tt.gen)

			result := c.Generate(context.Background(), loginRequest())

			assert.Equal(t, StatusError, result.Status)
			assert.Contains(t, result.Message, string(tt.wantStage))
			assert.Contains(t, result.Message, "empty completion")
			assert.Nil(t, result.ValidationReport)
			assert.Equal(t, tt.wantCalls, tt.gen.total())
		})
	}
}

func TestGenerateRetryBudgetIsOne(t *testing.T) {
	t.Parallel()

	// every attempt is invalid and flagged, yet steps are generated twice at most
	gen := &fakeGenerator{scenario: feature, steps: invalidSteps, retry: invalidSteps + "\nRULE VIOLATION"}
	c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, gen)

	for i := 0; i < 3; i++ {
		result := c.Generate(context.Background(), loginRequest())
		require.Equal(t, StatusSuccess, result.Status)
		assert.Equal(t, selector.StatusFail, result.ValidationReport.Status)
	}

	assert.Equal(t, 3, gen.scenarioCalls)
	assert.Equal(t, 3, gen.stepCalls)
	assert.Equal(t, 3, gen.retryCalls)
}

func TestGenerateRequiresStoryURL(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	c, _ := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, gen)

	result := c.Generate(context.Background(), Request{UIRepoLocation: "./web"})

	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, ErrMissingStoryURL.Error(), result.Message)
	assert.Equal(t, 0, gen.total())
}

type panickingGenerator struct{}

func (panickingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	panic("boom")
}

func TestGenerateRecoversFromPanic(t *testing.T) {
	t.Parallel()

	c, log := newTestController(&fakeFetcher{story: loginStory(), ui: loginUI()}, panickingGenerator{})

	result := c.Generate(context.Background(), loginRequest())

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "boom")
	assert.True(t, log.HasMessage("error", "pipeline panicked"))
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", &scriptgen.GenerationError{Backend: scriptgen.BackendOllama, Reason: scriptgen.ReasonTimeout, Err: ctx.Err()}
}

func TestGenerateAppliesGenerationTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.GenerationTimeout = 20 * time.Millisecond
	c := NewController(cfg, &fakeFetcher{story: loginStory(), ui: loginUI()}, slowGenerator{}, logger.NewTestLogger())

	result := c.Generate(context.Background(), loginRequest())

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "timed out")
}

func TestResultJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Result{Status: StatusError, Message: ErrSelectorsUnavailable.Error()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ERROR","message":"UI selectors unavailable. Cannot safely generate test automation."}`, string(data))
}

// End to end through the real context client against fake providers.
func TestGenerateWithContextProviders(t *testing.T) {
	t.Parallel()

	storyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream jira unavailable", http.StatusBadGateway)
	}))
	defer storyServer.Close()

	uiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"repo":"./web","selectorCount":1,"elements":{"data-testid:login":"[data-testid=\"login\"]"}}`))
	}))
	defer uiServer.Close()

	cfg := contextclient.DefaultConfig()
	cfg.StoryURL = storyServer.URL + "/context"
	cfg.UIURL = uiServer.URL + "/context"
	client := contextclient.NewClient(cfg, logger.NewTestLogger())

	gen := &fakeGenerator{scenario: feature, steps: validSteps}
	c, _ := newTestController(client, gen)

	result := c.Generate(context.Background(), loginRequest())

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, storyServer.URL+"/context")
	assert.Contains(t, result.Message, "502")
	assert.Equal(t, 0, gen.total())
}
