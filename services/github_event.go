package services

import (
	"encoding/json"
	"fmt"
	"os"

	"jira-merge-gate/models"
)

// LoadGitHubEvent reads the workflow event payload written by GitHub Actions
func LoadGitHubEvent(path string) (*models.GitHubEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload %s: %w", path, err)
	}

	var event models.GitHubEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event payload %s: %w", path, err)
	}

	return &event, nil
}

// ResolveLintText picks the text to scan for issue keys from the event.
// headRef is the value of GITHUB_HEAD_REF, used for the branch when the payload lacks one.
func ResolveLintText(event *models.GitHubEvent, source models.TextSource, headRef string) (string, error) {
	if event == nil {
		event = &models.GitHubEvent{}
	}

	var text string
	switch source {
	case models.TextSourceCommitMessage:
		text = commitMessage(event)
	case models.TextSourcePRTitle:
		if event.PullRequest != nil {
			text = event.PullRequest.Title
		}
	case models.TextSourceBranch:
		text = branchName(event, headRef)
	case models.TextSourceAuto, "":
		text = firstNonEmpty(
			mergeGroupMessage(event),
			pullRequestBranch(event),
			pullRequestTitle(event),
			pushMessage(event),
		)
	default:
		return "", fmt.Errorf("unknown text source: %s", source)
	}

	if text == "" {
		return "", fmt.Errorf("%w: source %s", ErrNoLintText, source)
	}
	return text, nil
}

func commitMessage(event *models.GitHubEvent) string {
	return firstNonEmpty(mergeGroupMessage(event), pushMessage(event))
}

func branchName(event *models.GitHubEvent, headRef string) string {
	mergeGroupRef := ""
	if event.MergeGroup != nil {
		mergeGroupRef = event.MergeGroup.HeadRef
	}
	return firstNonEmpty(pullRequestBranch(event), headRef, mergeGroupRef)
}

func mergeGroupMessage(event *models.GitHubEvent) string {
	if event.MergeGroup == nil {
		return ""
	}
	return event.MergeGroup.HeadCommit.Message
}

func pushMessage(event *models.GitHubEvent) string {
	if event.HeadCommit == nil {
		return ""
	}
	return event.HeadCommit.Message
}

func pullRequestBranch(event *models.GitHubEvent) string {
	if event.PullRequest == nil {
		return ""
	}
	return event.PullRequest.Head.Ref
}

func pullRequestTitle(event *models.GitHubEvent) string {
	if event.PullRequest == nil {
		return ""
	}
	return event.PullRequest.Title
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
