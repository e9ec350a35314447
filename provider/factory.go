package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker"
	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker/github"
	"github.com/hairizuanbinnoorazman/ui-testgen/issuetracker/jira"
)

// TrackerConfig holds the tracker instances the story provider may call and
// the credentials sent to them. Links pointing anywhere else are rejected
// before any request is made.
type TrackerConfig struct {
	JiraBaseURL  string
	JiraEmail    string
	JiraAPIToken string

	// GitHubHosts are the web hosts of accepted issue links, e.g.
	// "github.com" or a GitHub Enterprise host.
	GitHubHosts []string
	GitHubToken string
}

// TrackerFactory builds issue tracker clients for configured tracker instances.
type TrackerFactory struct {
	config TrackerConfig
}

// NewTrackerFactory creates a new tracker factory.
func NewTrackerFactory(config TrackerConfig) *TrackerFactory {
	return &TrackerFactory{config: config}
}

// normalizeBaseURL lowercases scheme and host and drops a trailing slash so
// configured and parsed base URLs compare equal.
func normalizeBaseURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
}

// githubAPIBase returns the API base URL for links on host, matching
// issuetracker.ParseIssueURL.
func githubAPIBase(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "github.com" {
		return "https://api.github.com"
	}
	return "https://" + host + "/api/v3"
}

func (f *TrackerFactory) githubAllowed(baseURL string) bool {
	want := normalizeBaseURL(baseURL)
	for _, host := range f.config.GitHubHosts {
		if host != "" && normalizeBaseURL(githubAPIBase(host)) == want {
			return true
		}
	}
	return false
}

// NewClient implements issuetracker.ClientFactory. baseURL must belong to a
// configured tracker; otherwise an error wrapping
// issuetracker.ErrUntrustedTracker is returned.
func (f *TrackerFactory) NewClient(provider issuetracker.ProviderType, baseURL string) (issuetracker.Client, error) {
	switch provider {
	case issuetracker.ProviderJira:
		configured := normalizeBaseURL(f.config.JiraBaseURL)
		if configured == "" {
			return nil, fmt.Errorf("jira base_url is not configured")
		}
		if normalizeBaseURL(baseURL) != configured {
			return nil, fmt.Errorf("%w: %s", issuetracker.ErrUntrustedTracker, baseURL)
		}
		client, err := jira.NewClient(map[string]string{
			"url":       configured,
			"email":     f.config.JiraEmail,
			"api_token": f.config.JiraAPIToken,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case issuetracker.ProviderGitHub:
		if !f.githubAllowed(baseURL) {
			return nil, fmt.Errorf("%w: %s", issuetracker.ErrUntrustedTracker, baseURL)
		}
		client, err := github.NewClient(map[string]string{
			"token":    f.config.GitHubToken,
			"base_url": baseURL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %s", issuetracker.ErrInvalidProvider, provider)
	}
}
