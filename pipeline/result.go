package pipeline

import (
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

// Status is the terminal outcome of a pipeline run.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Stage names a step of the pipeline state machine.
type Stage string

const (
	StageFetchingStory      Stage = "fetching_story"
	StageFetchingUI         Stage = "fetching_ui"
	StageFetchingAutomation Stage = "fetching_automation"
	StageHardStop           Stage = "hard_stop"
	StageGeneratingScenario Stage = "generating_scenario"
	StageGeneratingSteps    Stage = "generating_steps"
	StageValidating         Stage = "validating"
	StageCritiquing         Stage = "critiquing"
	StageRetryingSteps      Stage = "retrying_steps"
	StageRevalidating       Stage = "revalidating"
	StageDone               Stage = "done"
)

// ErrSelectorsUnavailable is returned when the UI context has no selectors.
// Its text is the user-facing message of the resulting ERROR.
var ErrSelectorsUnavailable = errors.New("UI selectors unavailable. Cannot safely generate test automation.")

// StageError ties a fatal failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Request is the input of a single pipeline run.
type Request struct {
	StoryURL               string `json:"storyUrl"`
	UIRepoLocation         string `json:"uiRepoLocation"`
	AutomationRepoLocation string `json:"automationRepoLocation,omitempty"`
}

// Artifacts holds the generated scenario file and step definitions.
type Artifacts struct {
	Feature string `json:"feature"`
	Steps   string `json:"steps"`
}

// Result is always returned by Controller.Generate. Callers distinguish
// outcomes through Status.
type Result struct {
	Status             Status           `json:"status"`
	Story              string           `json:"story,omitempty"`
	GeneratedArtifacts *Artifacts       `json:"generatedArtifacts,omitempty"`
	ValidationReport   *selector.Report `json:"validationReport,omitempty"`
	Retried            bool             `json:"retried,omitempty"`
	Message            string           `json:"message,omitempty"`
}

// Succeeded reports whether the run finished with SUCCESS.
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error()}
}
