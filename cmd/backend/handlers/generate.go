package handlers

import (
	"net/http"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/pipeline"
)

// GenerateRequest is the body of POST /api/v1/generate. The short field
// names are what the web frontend sends; the long ones mirror
// pipeline.Request and win when both are set.
type GenerateRequest struct {
	JiraURL                string `json:"jiraUrl"`
	UIRepo                 string `json:"uiRepo"`
	E2ERepo                string `json:"e2eRepo"`
	StoryURL               string `json:"storyUrl"`
	UIRepoLocation         string `json:"uiRepoLocation"`
	AutomationRepoLocation string `json:"automationRepoLocation"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ToPipelineRequest normalises the accepted field names.
func (r GenerateRequest) ToPipelineRequest() pipeline.Request {
	return pipeline.Request{
		StoryURL:               firstNonEmpty(r.StoryURL, r.JiraURL),
		UIRepoLocation:         firstNonEmpty(r.UIRepoLocation, r.UIRepo),
		AutomationRepoLocation: firstNonEmpty(r.AutomationRepoLocation, r.E2ERepo),
	}
}

// GenerateHandler handles test automation generation requests.
type GenerateHandler struct {
	pipeline pipeline.Runner
	logger   logger.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(p pipeline.Runner, log logger.Logger) *GenerateHandler {
	return &GenerateHandler{pipeline: p, logger: log}
}

// Generate handles POST /api/v1/generate. Pipeline failures are reported in
// the result body with status ERROR, so a well-formed request always gets 200.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := httpserver.ParseJSON(r, &body, h.logger); err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := body.ToPipelineRequest()
	if req.StoryURL == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "jiraUrl is required")
		return
	}

	result := h.pipeline.Generate(r.Context(), req)

	h.logger.Info(r.Context(), "generation finished", map[string]interface{}{
		"story_url": req.StoryURL,
		"status":    string(result.Status),
		"retried":   result.Retried,
	})

	httpserver.RespondJSON(w, http.StatusOK, result)
}
