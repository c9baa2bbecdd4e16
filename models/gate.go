package models

// TextSource selects which piece of the triggering event is scanned for issue keys
type TextSource string

const (
	// TextSourceAuto picks the first non-empty of: merge group commit message,
	// pull request branch, pull request title, pushed head commit message
	TextSourceAuto TextSource = "auto"
	// TextSourceCommitMessage scans the head commit message
	TextSourceCommitMessage TextSource = "commit_message"
	// TextSourcePRTitle scans the pull request title
	TextSourcePRTitle TextSource = "pr_title"
	// TextSourceBranch scans the head branch name
	TextSourceBranch TextSource = "branch"
)

// String returns the string representation of a TextSource
func (s TextSource) String() string {
	return string(s)
}

// IsValid checks if the TextSource is valid
func (s TextSource) IsValid() bool {
	switch s {
	case TextSourceAuto, TextSourceCommitMessage, TextSourcePRTitle, TextSourceBranch:
		return true
	default:
		return false
	}
}

// KeySelection decides which of several extracted keys are looked up
type KeySelection string

const (
	// KeySelectionFirst checks the leftmost key only
	KeySelectionFirst KeySelection = "first"
	// KeySelectionLast checks the rightmost key only (the end of a branch name)
	KeySelectionLast KeySelection = "last"
	// KeySelectionAll checks every distinct key
	KeySelectionAll KeySelection = "all"
)

// String returns the string representation of a KeySelection
func (k KeySelection) String() string {
	return string(k)
}

// IsValid checks if the KeySelection is valid
func (k KeySelection) IsValid() bool {
	switch k {
	case KeySelectionFirst, KeySelectionLast, KeySelectionAll:
		return true
	default:
		return false
	}
}

// Select applies the policy to keys. It returns nil when keys is empty.
func (k KeySelection) Select(keys IssueKeys) IssueKeys {
	if len(keys) == 0 {
		return nil
	}
	switch k {
	case KeySelectionFirst:
		return IssueKeys{keys[0]}
	case KeySelectionAll:
		return keys.Unique()
	default:
		return IssueKeys{keys[len(keys)-1]}
	}
}

// GateResult is the outcome of checking one piece of text
type GateResult struct {
	// Text is what was scanned
	Text string
	// Keys are all keys extracted from Text, in order, duplicates included
	Keys IssueKeys
	// Selected are the keys that were looked up
	Selected IssueKeys
	// Issues holds the details fetched for each selected key that resolved
	Issues []JiraDetails
	// Passed is true when every selected key resolved to an issue in an allowed status
	Passed bool
}
