package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrIssueKeyMissing is returned when the scanned text holds no issue key
	ErrIssueKeyMissing = errors.New("jira issue key is missing")

	// ErrInvalidIssueKey is returned when a key does not resolve to a readable issue
	ErrInvalidIssueKey = errors.New("invalid jira issue key")

	// ErrStatusNotAllowed is returned when the issue is not in one of the allowed statuses
	ErrStatusNotAllowed = errors.New("jira issue status is not allowed")

	// ErrNoLintText is returned when the configured text source is empty for the event
	ErrNoLintText = errors.New("no text to check in the event payload")
)

// JiraAPIError is returned when Jira answers with an unexpected status code
type JiraAPIError struct {
	Operation  string
	URL        string
	StatusCode int
	Body       string
	// Messages are the reasons Jira gave in its error body, empty when the body was not a
	// Jira error document
	Messages []string
}

func (e *JiraAPIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("failed to %s %s: status_code=%d, jira: %s", e.Operation, e.URL, e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("failed to %s %s: status_code=%d, body=%s", e.Operation, e.URL, e.StatusCode, e.Body)
}

// IsNotFound reports whether the issue does not exist
func (e *JiraAPIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the credential was rejected or lacks permission
func (e *JiraAPIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// FailureMessage turns a gate error into the message shown on the workflow run
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIssueKeyMissing):
		return "Jira issue id is missing in your branch."
	case errors.Is(err, ErrInvalidIssueKey):
		return "Invalid Jira key. Please create a branch with a valid Jira issue key."
	case errors.Is(err, ErrStatusNotAllowed):
		return "The found Jira issue is not in acceptable statuses."
	default:
		return err.Error()
	}
}
