package contextclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRole is returned when a fetch names a role with no configured provider.
	ErrUnknownRole = errors.New("unknown context provider role")

	// ErrMissingStoryID is returned when the story provider answers without a storyId.
	ErrMissingStoryID = errors.New("story context is missing storyId")
)

// Reason classifies why a context fetch failed.
type Reason string

const (
	ReasonRequest          Reason = "request"
	ReasonTimeout          Reason = "timeout"
	ReasonTransport        Reason = "transport"
	ReasonNonSuccessStatus Reason = "non_success_status"
	ReasonEmptyBody        Reason = "empty_body"
	ReasonMalformedBody    Reason = "malformed_body"
)

// FetchError is the only error type returned by Client fetches.
type FetchError struct {
	Role       Role
	URL        string
	Reason     Reason
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Reason {
	case ReasonNonSuccessStatus:
		return fmt.Sprintf("context provider error at %s | Status %d | %s", e.URL, e.StatusCode, e.Body)
	case ReasonEmptyBody:
		return fmt.Sprintf("empty response from context provider at %s", e.URL)
	case ReasonTimeout:
		return fmt.Sprintf("context provider at %s timed out: %v", e.URL, e.Err)
	case ReasonMalformedBody:
		return fmt.Sprintf("malformed response from context provider at %s: %v", e.URL, e.Err)
	case ReasonRequest:
		return fmt.Sprintf("invalid %s context request: %v", e.Role, e.Err)
	default:
		return fmt.Sprintf("context provider at %s unreachable: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a *FetchError from err, if there is one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
