package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker"
)

// Client implements the issuetracker.Client interface for Jira.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiToken   string
	converter  *md.Converter
}

// NewClient creates a new Jira issue tracker client.
func NewClient(credentials map[string]string) (*Client, error) {
	baseURL, ok := credentials["url"]
	if !ok || baseURL == "" {
		return nil, fmt.Errorf("jira: url is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	email, ok := credentials["email"]
	if !ok || email == "" {
		return nil, fmt.Errorf("jira: email is required")
	}

	apiToken, ok := credentials["api_token"]
	if !ok || apiToken == "" {
		return nil, fmt.Errorf("jira: api_token is required")
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		converter:  converter,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("jira: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("jira: failed to create request: %w", err)
	}

	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

type jiraIssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description"`
	Status      jiraNamed       `json:"status"`
	Priority    *jiraNamed      `json:"priority"`
	Labels      []string        `json:"labels"`
	Components  []jiraNamed     `json:"components"`
	Created     string          `json:"created"`
	Updated     string          `json:"updated"`
	IssueType   jiraNamed       `json:"issuetype"`
}

type jiraNamed struct {
	Name string `json:"name"`
}

type jiraRenderedFields struct {
	Description string `json:"description"`
}

type jiraIssue struct {
	ID             string             `json:"id"`
	Key            string             `json:"key"`
	Self           string             `json:"self"`
	Fields         jiraIssueFields    `json:"fields"`
	RenderedFields jiraRenderedFields `json:"renderedFields"`
}

// description prefers the ADF document. Plain string descriptions (API v2
// and some server installs) are used as is, and the rendered HTML is the
// last resort.
func (c *Client) description(ji *jiraIssue) string {
	raw := bytes.TrimSpace(ji.Fields.Description)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		switch raw[0] {
		case '{':
			var doc adfNode
			if err := json.Unmarshal(raw, &doc); err == nil {
				if text := flattenADF(doc); text != "" {
					return text
				}
			}
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	if html := strings.TrimSpace(ji.RenderedFields.Description); html != "" {
		markdown, err := c.converter.ConvertString(html)
		if err == nil {
			return strings.TrimSpace(markdown)
		}
	}
	return ""
}

func (c *Client) toIssue(ji *jiraIssue) *issuetracker.Issue {
	desc := c.description(ji)

	created, _ := time.Parse("2006-01-02T15:04:05.000-0700", ji.Fields.Created)
	updated, _ := time.Parse("2006-01-02T15:04:05.000-0700", ji.Fields.Updated)

	priority := ""
	if ji.Fields.Priority != nil {
		priority = ji.Fields.Priority.Name
	}

	labels := ji.Fields.Labels
	if labels == nil {
		labels = []string{}
	}
	components := make([]string, 0, len(ji.Fields.Components))
	for _, comp := range ji.Fields.Components {
		components = append(components, comp.Name)
	}

	return &issuetracker.Issue{
		ExternalID:         ji.Key,
		Title:              ji.Fields.Summary,
		Description:        desc,
		AcceptanceCriteria: issuetracker.ExtractAcceptanceCriteria(desc),
		Status:             ji.Fields.Status.Name,
		Priority:           priority,
		Labels:             labels,
		Components:         components,
		URL:                fmt.Sprintf("%s/browse/%s", c.baseURL, ji.Key),
		Provider:           issuetracker.ProviderJira,
		CreatedAt:          created,
		UpdatedAt:          updated,
	}
}

// GetIssue gets a Jira issue by key.
func (c *Client) GetIssue(ctx context.Context, externalID string) (*issuetracker.Issue, error) {
	apiURL := fmt.Sprintf("%s/rest/api/3/issue/%s?expand=renderedFields", c.baseURL, url.PathEscape(externalID))
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
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
			Provider:   issuetracker.ProviderJira,
			Op:         "get issue",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var ji jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&ji); err != nil {
		return nil, fmt.Errorf("jira: failed to decode response: %w", err)
	}

	return c.toIssue(&ji), nil
}

// ValidateConnection validates the Jira connection by fetching the authenticated user.
func (c *Client) ValidateConnection(ctx context.Context) error {
	apiURL := fmt.Sprintf("%s/rest/api/3/myself", c.baseURL)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", issuetracker.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", issuetracker.ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}
