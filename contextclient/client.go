package contextclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 32 << 20

// Config holds provider endpoints and per-role timeouts.
type Config struct {
	StoryURL          string
	UIURL             string
	AutomationURL     string
	StoryTimeout      time.Duration
	UITimeout         time.Duration
	AutomationTimeout time.Duration
}

// DefaultConfig returns endpoints for providers running on localhost.
// Story lookups are short; repository scans may need to clone first.
func DefaultConfig() Config {
	return Config{
		StoryURL:          "http://localhost:8002/context",
		UIURL:             "http://localhost:8001/context",
		AutomationURL:     "http://localhost:8004/context",
		StoryTimeout:      30 * time.Second,
		UITimeout:         120 * time.Second,
		AutomationTimeout: 120 * time.Second,
	}
}

// Client fetches structured context from the upstream providers.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a new context provider client.
func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     log,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Timeouts are still
// applied per call from the config.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

func (c *Client) endpoint(role Role) (string, time.Duration, bool) {
	switch role {
	case RoleStory:
		return c.config.StoryURL, c.config.StoryTimeout, true
	case RoleUI:
		return c.config.UIURL, c.config.UITimeout, true
	case RoleAutomation:
		return c.config.AutomationURL, c.config.AutomationTimeout, true
	default:
		return "", 0, false
	}
}

// Fetch performs a GET against the provider for role and returns the raw JSON
// body. Any failure is returned as a *FetchError; nothing is retried here.
func (c *Client) Fetch(ctx context.Context, role Role, params url.Values) (json.RawMessage, error) {
	base, timeout, ok := c.endpoint(role)
	if !ok || base == "" {
		return nil, &FetchError{Role: role, Reason: ReasonRequest, Err: fmt.Errorf("%w: %s", ErrUnknownRole, role)}
	}

	fullURL := base
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		fullURL = base + sep + params.Encode()
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Role: role, URL: base, Reason: ReasonRequest, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := ReasonTransport
		if isTimeout(err) {
			reason = ReasonTimeout
		}
		c.logger.Error(ctx, "context fetch failed", map[string]interface{}{
			"role":   string(role),
			"url":    base,
			"reason": string(reason),
			"error":  err.Error(),
		})
		return nil, &FetchError{Role: role, URL: base, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		reason := ReasonTransport
		if isTimeout(err) {
			reason = ReasonTimeout
		}
		return nil, &FetchError{Role: role, URL: base, Reason: reason, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error(ctx, "context provider returned non-success status", map[string]interface{}{
			"role":        string(role),
			"url":         base,
			"status_code": resp.StatusCode,
		})
		return nil, &FetchError{
			Role:       role,
			URL:        base,
			Reason:     ReasonNonSuccessStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if strings.TrimSpace(string(body)) == "" {
		return nil, &FetchError{Role: role, URL: base, Reason: ReasonEmptyBody, StatusCode: resp.StatusCode}
	}

	if !json.Valid(body) {
		return nil, &FetchError{
			Role:       role,
			URL:        base,
			Reason:     ReasonMalformedBody,
			StatusCode: resp.StatusCode,
			Err:        errors.New("body is not valid JSON"),
		}
	}

	c.logger.Debug(ctx, "context fetched", map[string]interface{}{
		"role":        string(role),
		"url":         base,
		"bytes":       len(body),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return json.RawMessage(body), nil
}

// FetchStory retrieves the story context for an issue URL.
func (c *Client) FetchStory(ctx context.Context, storyURL string) (*StoryContext, error) {
	var story StoryContext
	if err := c.fetchInto(ctx, RoleStory, url.Values{"jira_url": {storyURL}}, &story); err != nil {
		return nil, err
	}
	if strings.TrimSpace(story.StoryID) == "" {
		return nil, &FetchError{Role: RoleStory, URL: c.config.StoryURL, Reason: ReasonMalformedBody, Err: ErrMissingStoryID}
	}
	return &story, nil
}

// FetchUI retrieves the selector inventory for a UI repository.
// A response without elements yields an empty, non-nil mapping.
func (c *Client) FetchUI(ctx context.Context, repoLocation string) (*UIContext, error) {
	var ui UIContext
	if err := c.fetchInto(ctx, RoleUI, url.Values{"repo_url": {repoLocation}}, &ui); err != nil {
		return nil, err
	}
	if ui.Elements == nil {
		ui.Elements = map[string]string{}
	}
	return &ui, nil
}

// FetchAutomation retrieves the existing automation inventory for a repository.
func (c *Client) FetchAutomation(ctx context.Context, repoLocation string) (*AutomationContext, error) {
	var auto AutomationContext
	if err := c.fetchInto(ctx, RoleAutomation, url.Values{"repo_url": {repoLocation}}, &auto); err != nil {
		return nil, err
	}
	return &auto, nil
}

func (c *Client) fetchInto(ctx context.Context, role Role, params url.Values, dest interface{}) error {
	raw, err := c.Fetch(ctx, role, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		base, _, _ := c.endpoint(role)
		return &FetchError{Role: role, URL: base, Reason: ReasonMalformedBody, Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
