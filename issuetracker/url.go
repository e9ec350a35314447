package issuetracker

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// IssueRef identifies an issue parsed from a browser link.
type IssueRef struct {
	Provider   ProviderType
	BaseURL    string
	ExternalID string
}

// ParseIssueURL recognises Jira browse links (<base>/browse/<KEY>) and
// GitHub issue links (https://github.com/<owner>/<repo>/issues/<n>).
func ParseIssueURL(raw string) (IssueRef, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return IssueRef{}, fmt.Errorf("%w: %q", ErrInvalidIssueURL, raw)
	}

	path := strings.TrimRight(u.Path, "/")

	if idx := strings.Index(path, "/browse/"); idx != -1 {
		key := path[idx+len("/browse/"):]
		if key == "" || strings.Contains(key, "/") {
			return IssueRef{}, fmt.Errorf("%w: missing issue key in %q", ErrInvalidIssueURL, raw)
		}
		return IssueRef{
			Provider:   ProviderJira,
			BaseURL:    fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, path[:idx]),
			ExternalID: key,
		}, nil
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 4 && parts[2] == "issues" {
		if _, err := strconv.Atoi(parts[3]); err != nil {
			return IssueRef{}, fmt.Errorf("%w: invalid issue number in %q", ErrInvalidIssueURL, raw)
		}
		baseURL := "https://api.github.com"
		if u.Host != "github.com" {
			// GitHub Enterprise serves the API under /api/v3.
			baseURL = fmt.Sprintf("%s://%s/api/v3", u.Scheme, u.Host)
		}
		return IssueRef{
			Provider:   ProviderGitHub,
			BaseURL:    baseURL,
			ExternalID: fmt.Sprintf("%s/%s#%s", parts[0], parts[1], parts[3]),
		}, nil
	}

	return IssueRef{}, fmt.Errorf("%w: unrecognised issue link %q", ErrInvalidIssueURL, raw)
}
