package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker"
)

const defaultBaseURL = "https://api.github.com"

// Client implements the issuetracker.Client interface for GitHub.
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// NewClient creates a new GitHub issue tracker client. The token is
// optional; without one only public repositories can be read.
func NewClient(credentials map[string]string) (*Client, error) {
	baseURL := defaultBaseURL
	if u, ok := credentials["base_url"]; ok && u != "" {
		baseURL = strings.TrimRight(u, "/")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: base_url must be an http(s) url")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      credentials["token"],
		baseURL:    baseURL,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	return c.httpClient.Do(req)
}

// parseExternalID parses "owner/repo#number" into owner, repo, and number.
func parseExternalID(externalID string) (owner, repo string, number int, err error) {
	parts := strings.SplitN(externalID, "#", 2)
	if len(parts) != 2 {
		return "", "", 0, fmt.Errorf("github: invalid external ID format, expected owner/repo#number")
	}

	repoParts := strings.SplitN(parts[0], "/", 2)
	if len(repoParts) != 2 || repoParts[0] == "" || repoParts[1] == "" {
		return "", "", 0, fmt.Errorf("github: invalid external ID format, expected owner/repo#number")
	}

	number, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", "", 0, fmt.Errorf("github: invalid issue number in external ID: %w", err)
	}

	return repoParts[0], repoParts[1], number, nil
}

type githubIssue struct {
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	State     string       `json:"state"`
	HTMLURL   string       `json:"html_url"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Labels    []labelEntry `json:"labels"`
	Milestone *struct {
		Title string `json:"title"`
	} `json:"milestone"`
}

type labelEntry struct {
	Name string `json:"name"`
}

// priorityPrefixes are label prefixes commonly used to encode priority.
var priorityPrefixes = []string{"priority:", "priority/", "p:"}

func (c *Client) toIssue(gi *githubIssue, owner, repo string) *issuetracker.Issue {
	labels := make([]string, 0, len(gi.Labels))
	priority := ""
	for _, l := range gi.Labels {
		lower := strings.ToLower(l.Name)
		matched := false
		for _, prefix := range priorityPrefixes {
			if strings.HasPrefix(lower, prefix) {
				priority = strings.TrimSpace(l.Name[len(prefix):])
				matched = true
				break
			}
		}
		if !matched {
			labels = append(labels, l.Name)
		}
	}

	components := []string{}
	if gi.Milestone != nil && gi.Milestone.Title != "" {
		components = append(components, gi.Milestone.Title)
	}

	body := strings.TrimSpace(gi.Body)

	return &issuetracker.Issue{
		ExternalID:         fmt.Sprintf("%s/%s#%d", owner, repo, gi.Number),
		Title:              gi.Title,
		Description:        body,
		AcceptanceCriteria: issuetracker.ExtractAcceptanceCriteria(body),
		Status:             gi.State,
		Priority:           priority,
		Labels:             labels,
		Components:         components,
		URL:                gi.HTMLURL,
		Provider:           issuetracker.ProviderGitHub,
		CreatedAt:          gi.CreatedAt,
		UpdatedAt:          gi.UpdatedAt,
	}
}

// GetIssue gets a GitHub issue by external ID.
func (c *Client) GetIssue(ctx context.Context, externalID string) (*issuetracker.Issue, error) {
	owner, repo, number, err := parseExternalID(externalID)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseURL, owner, repo, number)
	resp, err := c.doRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, issuetracker.ErrIssueNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &issuetracker.StatusError{
			Provider:   issuetracker.ProviderGitHub,
			Op:         "get issue",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var gi githubIssue
	if err := json.NewDecoder(resp.Body).Decode(&gi); err != nil {
		return nil, fmt.Errorf("github: failed to decode response: %w", err)
	}

	return c.toIssue(&gi, owner, repo), nil
}

// ValidateConnection validates the GitHub connection by fetching the
// authenticated user, or the API root when no token is configured.
func (c *Client) ValidateConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/user", c.baseURL)
	if c.token == "" {
		url = c.baseURL
	}
	resp, err := c.doRequest(ctx, http.MethodGet, url)
	if err != nil {
		return fmt.Errorf("%w: %v", issuetracker.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", issuetracker.ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}
