package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
	"github.com/hairizuanbinnoorazman/ui-testgen/reposcan"
)

// RepoScanner reads context from a repository. *reposcan.Scanner satisfies it.
type RepoScanner interface {
	ScanUI(ctx context.Context, location string) (*contextclient.UIContext, error)
	ScanAutomation(ctx context.Context, location string) (*contextclient.AutomationContext, error)
}

// RepoHandler serves UI and automation context scanned from repositories.
type RepoHandler struct {
	scanner RepoScanner
	logger  logger.Logger
}

// NewRepoHandler creates a new repository context handler.
func NewRepoHandler(scanner RepoScanner, log logger.Logger) *RepoHandler {
	return &RepoHandler{scanner: scanner, logger: log}
}

// UIContext handles GET /context?repo_url=<location> for the UI provider.
func (h *RepoHandler) UIContext(w http.ResponseWriter, r *http.Request) {
	location, ok := repoLocation(w, r)
	if !ok {
		return
	}

	ui, err := h.scanner.ScanUI(r.Context(), location)
	if err != nil {
		h.respondScanError(w, r, location, err)
		return
	}
	httpserver.RespondJSON(w, http.StatusOK, ui)
}

// AutomationContext handles GET /context?repo_url=<location> for the
// automation provider.
func (h *RepoHandler) AutomationContext(w http.ResponseWriter, r *http.Request) {
	location, ok := repoLocation(w, r)
	if !ok {
		return
	}

	ac, err := h.scanner.ScanAutomation(r.Context(), location)
	if err != nil {
		h.respondScanError(w, r, location, err)
		return
	}
	httpserver.RespondJSON(w, http.StatusOK, ac)
}

func repoLocation(w http.ResponseWriter, r *http.Request) (string, bool) {
	location := strings.TrimSpace(r.URL.Query().Get("repo_url"))
	if location == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "repo_url is required")
		return "", false
	}
	return location, true
}

func (h *RepoHandler) respondScanError(w http.ResponseWriter, r *http.Request, location string, err error) {
	h.logger.Error(r.Context(), "repository scan failed", map[string]interface{}{
		"repo":  location,
		"error": err.Error(),
	})

	switch {
	case errors.Is(err, reposcan.ErrRepoNotFound):
		httpserver.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reposcan.ErrCloneFailed):
		httpserver.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httpserver.RespondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		httpserver.RespondError(w, http.StatusInternalServerError, "failed to scan repository")
	}
}
