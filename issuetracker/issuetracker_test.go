package issuetracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIssueURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    IssueRef
		wantErr bool
	}{
		{
			name: "jira cloud",
			raw:  "https://example.atlassian.net/browse/KAN-1",
			want: IssueRef{Provider: ProviderJira, BaseURL: "https://example.atlassian.net", ExternalID: "KAN-1"},
		},
		{
			name: "jira server with context path and trailing slash",
			raw:  "https://jira.corp.local/jira/browse/PROJ-42/",
			want: IssueRef{Provider: ProviderJira, BaseURL: "https://jira.corp.local/jira", ExternalID: "PROJ-42"},
		},
		{
			name: "github",
			raw:  "https://github.com/acme/shop/issues/7",
			want: IssueRef{Provider: ProviderGitHub, BaseURL: "https://api.github.com", ExternalID: "acme/shop#7"},
		},
		{
			name: "github enterprise",
			raw:  "https://git.corp.local/acme/shop/issues/7",
			want: IssueRef{Provider: ProviderGitHub, BaseURL: "https://git.corp.local/api/v3", ExternalID: "acme/shop#7"},
		},
		{name: "missing key", raw: "https://example.atlassian.net/browse/", wantErr: true},
		{name: "non numeric github issue", raw: "https://github.com/acme/shop/issues/abc", wantErr: true},
		{name: "not a url", raw: "KAN-1", wantErr: true},
		{name: "unknown layout", raw: "https://example.com/some/page", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseIssueURL(tt.raw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidIssueURL))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAcceptanceCriteria(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "markdown heading",
			text: "As a user I want to log in\n\n## Acceptance Criteria\n- valid login opens dashboard\n- invalid login shows error\n\n## Notes\n- not a criterion",
			want: []string{"valid login opens dashboard", "invalid login shows error"},
		},
		{
			name: "plain label with numbered list",
			text: "Acceptance criteria:\n1. first\n2) second\nOut of scope:\n- other",
			want: []string{"first", "second"},
		},
		{
			name: "bold heading with checkboxes",
			text: "**Acceptance Criteria**\n* [ ] one\n* [x] two",
			want: []string{"one", "two"},
		},
		{
			name: "no section",
			text: "- just a list\n- without heading",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractAcceptanceCriteria(tt.text))
		})
	}
}

func TestProviderTypeIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, ProviderJira.IsValid())
	assert.True(t, ProviderGitHub.IsValid())
	assert.False(t, ProviderType("gitlab").IsValid())
}
