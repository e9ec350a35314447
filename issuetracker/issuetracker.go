package issuetracker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrIssueNotFound    = errors.New("issue not found")
	ErrInvalidProvider  = errors.New("invalid provider type")
	ErrConnectionFailed = errors.New("connection validation failed")
	ErrInvalidIssueURL  = errors.New("invalid issue url")
	ErrUntrustedTracker = errors.New("issue tracker host is not allowed")
)

type ProviderType string

const (
	ProviderJira   ProviderType = "jira"
	ProviderGitHub ProviderType = "github"
)

func (p ProviderType) IsValid() bool {
	return p == ProviderJira || p == ProviderGitHub
}

// Issue is a tracker issue reduced to the fields a user story needs.
type Issue struct {
	ExternalID         string       `json:"external_id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	AcceptanceCriteria []string     `json:"acceptance_criteria"`
	Status             string       `json:"status"`
	Priority           string       `json:"priority,omitempty"`
	Labels             []string     `json:"labels"`
	Components         []string     `json:"components"`
	URL                string       `json:"url"`
	Provider           ProviderType `json:"provider"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Client reads issues from one tracker.
type Client interface {
	GetIssue(ctx context.Context, externalID string) (*Issue, error)
	ValidateConnection(ctx context.Context) error
}

// StatusError is returned when a tracker answers with an unexpected status.
type StatusError struct {
	Provider   ProviderType
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s failed with status %d: %s", e.Provider, e.Op, e.StatusCode, e.Body)
}
