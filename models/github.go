package models

// GitHubEvent represents the workflow event payload GitHub Actions writes to GITHUB_EVENT_PATH.
// Only the fields the gate reads are decoded; which of them are set depends on the trigger.
type GitHubEvent struct {
	Action      string             `json:"action"`
	MergeGroup  *GitHubMergeGroup  `json:"merge_group,omitempty"`
	PullRequest *GitHubPullRequest `json:"pull_request,omitempty"`
	HeadCommit  *GitHubCommit      `json:"head_commit,omitempty"` // push events
	Ref         string             `json:"ref,omitempty"`
	Repository  GitHubRepository   `json:"repository"`
}

// GitHubMergeGroup represents the merge queue group under test
type GitHubMergeGroup struct {
	HeadSHA    string       `json:"head_sha"`
	HeadRef    string       `json:"head_ref"`
	BaseSHA    string       `json:"base_sha"`
	BaseRef    string       `json:"base_ref"`
	HeadCommit GitHubCommit `json:"head_commit"`
}

// GitHubCommit represents a commit embedded in an event payload
type GitHubCommit struct {
	ID      string `json:"id"`
	TreeID  string `json:"tree_id"`
	Message string `json:"message"`
}

// GitHubPullRequest represents a GitHub pull request
type GitHubPullRequest struct {
	ID      int64     `json:"id"`
	Number  int       `json:"number"`
	State   string    `json:"state"`
	Title   string    `json:"title"`
	HTMLURL string    `json:"html_url"`
	Head    GitHubRef `json:"head"`
	Base    GitHubRef `json:"base"`
}

// GitHubRepository represents a GitHub repository
type GitHubRepository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// GitHubRef represents a Git reference in a GitHub pull request
type GitHubRef struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
	SHA   string `json:"sha"`
}
