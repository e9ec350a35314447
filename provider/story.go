package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// StoryHandler serves story context resolved from issue tracker links.
type StoryHandler struct {
	factory issuetracker.ClientFactory
	logger  logger.Logger
}

// NewStoryHandler creates a new story context handler.
func NewStoryHandler(factory issuetracker.ClientFactory, log logger.Logger) *StoryHandler {
	return &StoryHandler{factory: factory, logger: log}
}

// Context handles GET /context?jira_url=<issue link>.
func (h *StoryHandler) Context(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("jira_url"))
	if raw == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "jira_url is required")
		return
	}

	ref, err := issuetracker.ParseIssueURL(raw)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.factory.NewClient(ref.Provider, ref.BaseURL)
	if errors.Is(err, issuetracker.ErrUntrustedTracker) {
		h.logger.Warn(r.Context(), "rejected issue link for unknown tracker", map[string]interface{}{
			"provider": string(ref.Provider),
			"base_url": ref.BaseURL,
		})
		httpserver.RespondError(w, http.StatusBadRequest, fmt.Sprintf("issue tracker %s is not allowed", ref.BaseURL))
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "failed to create tracker client", map[string]interface{}{
			"provider": string(ref.Provider),
			"error":    err.Error(),
		})
		httpserver.RespondError(w, http.StatusInternalServerError, "issue tracker is not configured")
		return
	}

	issue, err := client.GetIssue(r.Context(), ref.ExternalID)
	if err != nil {
		h.respondTrackerError(w, r, ref, err)
		return
	}

	h.logger.Info(r.Context(), "story context served", map[string]interface{}{
		"provider": string(ref.Provider),
		"story_id": issue.ExternalID,
		"criteria": len(issue.AcceptanceCriteria),
	})

	httpserver.RespondJSON(w, http.StatusOK, toStoryContext(issue))
}

func (h *StoryHandler) respondTrackerError(w http.ResponseWriter, r *http.Request, ref issuetracker.IssueRef, err error) {
	fields := map[string]interface{}{
		"provider":    string(ref.Provider),
		"external_id": ref.ExternalID,
		"error":       err.Error(),
	}

	if errors.Is(err, issuetracker.ErrIssueNotFound) {
		h.logger.Warn(r.Context(), "issue not found", fields)
		httpserver.RespondError(w, http.StatusNotFound, fmt.Sprintf("issue %s not found", ref.ExternalID))
		return
	}

	var statusErr *issuetracker.StatusError
	if errors.As(err, &statusErr) {
		h.logger.Error(r.Context(), "issue tracker returned an error", fields)
		httpserver.RespondError(w, statusErr.StatusCode, statusErr.Error())
		return
	}

	h.logger.Error(r.Context(), "failed to fetch issue", fields)
	httpserver.RespondError(w, http.StatusBadGateway, err.Error())
}

func toStoryContext(issue *issuetracker.Issue) contextclient.StoryContext {
	return contextclient.StoryContext{
		StoryID:            issue.ExternalID,
		Summary:            issue.Title,
		Description:        issue.Description,
		AcceptanceCriteria: nonNil(issue.AcceptanceCriteria),
		Status:             issue.Status,
		Priority:           issue.Priority,
		Labels:             nonNil(issue.Labels),
		Components:         nonNil(issue.Components),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
