package models

// JiraTicketResponse represents the response from getting a single Jira ticket
type JiraTicketResponse struct {
	ID     string     `json:"id"`
	Self   string     `json:"self"`
	Key    string     `json:"key"`
	Fields JiraFields `json:"fields"`
}

// JiraFields represents the subset of issue fields the gate requests
type JiraFields struct {
	Summary   string        `json:"summary"`
	Status    JiraStatus    `json:"status"`
	IssueType JiraIssueType `json:"issuetype"`
	Project   JiraProject   `json:"project"`
	Labels    []string      `json:"labels"`
	// StoryPoints is the estimate custom field on Jira Cloud
	StoryPoints *float64 `json:"customfield_10016,omitempty"`
}

// JiraStatus represents the status of a Jira issue
type JiraStatus struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	StatusCategory JiraStatusCategory `json:"statusCategory"`
}

// JiraStatusCategory is the coarse bucket (new, indeterminate, done) a status belongs to
type JiraStatusCategory struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// JiraIssueType represents the type of a Jira issue
type JiraIssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Subtask     bool   `json:"subtask"`
}

// JiraProject represents a Jira project
type JiraProject struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// JiraErrorResponse is the error body Jira returns on failed requests
type JiraErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// JiraDetails is the trimmed view of an issue used to decide whether a merge may proceed
type JiraDetails struct {
	Key      string             `json:"key" yaml:"key"`
	Summary  string             `json:"summary" yaml:"summary"`
	URL      string             `json:"url" yaml:"url"`
	Status   string             `json:"status" yaml:"status"`
	Type     JiraDetailsType    `json:"type" yaml:"type"`
	Project  JiraDetailsProject `json:"project" yaml:"project"`
	Estimate string             `json:"estimate" yaml:"estimate"`
	Labels   []JiraDetailsLabel `json:"labels" yaml:"labels"`
}

// JiraDetailsType names the issue type and its icon
type JiraDetailsType struct {
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon" yaml:"icon"`
}

// JiraDetailsProject identifies the project an issue belongs to
type JiraDetailsProject struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Key  string `json:"key" yaml:"key"`
}

// JiraDetailsLabel is a label with a link to the issues sharing it
type JiraDetailsLabel struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
