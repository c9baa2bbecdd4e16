package services

import (
	"slices"

	"jira-merge-gate/models"
)

// IsIssueStatusValid reports whether an issue may be merged against.
// With enforce false every issue passes. Otherwise the issue status must appear in allowed
// exactly as written: no trimming and no case folding on either side.
func IsIssueStatusValid(enforce bool, allowed []string, details *models.JiraDetails) bool {
	if !enforce {
		return true
	}
	if details == nil {
		return false
	}
	return slices.Contains(allowed, details.Status)
}
