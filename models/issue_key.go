package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxProjectCodeLength is the longest project code an issue key may carry
	MaxProjectCodeLength = 10
)

// ErrInvalidIssueKey is returned when a string is not a canonical issue key
var ErrInvalidIssueKey = errors.New("invalid issue key")

// IssueKey is a normalized Jira issue identifier such as "ABC-123"
type IssueKey struct {
	// ProjectCode is 1-10 upper-case letters or digits, starting with a letter
	ProjectCode string
	// Number is the sequence number, copied verbatim from the source text
	Number string
}

// String returns the canonical "PROJECT-NUMBER" form
func (k IssueKey) String() string {
	return k.ProjectCode + "-" + k.Number
}

// IsZero reports whether the key is empty
func (k IssueKey) IsZero() bool {
	return k.ProjectCode == "" && k.Number == ""
}

// IssueKeys is an ordered list of issue keys as found in a piece of text.
// Duplicates are kept.
type IssueKeys []IssueKey

// Strings returns the canonical form of every key, in order
func (ks IssueKeys) Strings() []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.String())
	}
	return out
}

// Unique returns the keys with later duplicates removed, keeping first-occurrence order
func (ks IssueKeys) Unique() IssueKeys {
	seen := make(map[IssueKey]bool, len(ks))
	var unique IssueKeys
	for _, k := range ks {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}
	return unique
}

// ParseIssueKey parses a single issue key. The whole string must be a key;
// lower-case letters are accepted and normalized to upper case.
func ParseIssueKey(s string) (IssueKey, error) {
	project, number, found := strings.Cut(s, "-")
	if !found {
		return IssueKey{}, fmt.Errorf("%w: %q has no hyphen", ErrInvalidIssueKey, s)
	}
	if len(project) == 0 || len(project) > MaxProjectCodeLength {
		return IssueKey{}, fmt.Errorf("%w: %q project code must be 1-%d characters", ErrInvalidIssueKey, s, MaxProjectCodeLength)
	}
	if !IsASCIILetter(project[0]) {
		return IssueKey{}, fmt.Errorf("%w: %q project code must start with a letter", ErrInvalidIssueKey, s)
	}
	for i := 1; i < len(project); i++ {
		if !IsASCIILetter(project[i]) && !IsASCIIDigit(project[i]) {
			return IssueKey{}, fmt.Errorf("%w: %q project code must be letters or digits", ErrInvalidIssueKey, s)
		}
	}
	if len(number) == 0 {
		return IssueKey{}, fmt.Errorf("%w: %q has no issue number", ErrInvalidIssueKey, s)
	}
	for i := 0; i < len(number); i++ {
		if !IsASCIIDigit(number[i]) {
			return IssueKey{}, fmt.Errorf("%w: %q issue number must be digits", ErrInvalidIssueKey, s)
		}
	}
	return IssueKey{ProjectCode: strings.ToUpper(project), Number: number}, nil
}

// IsASCIILetter reports whether c is in A-Z or a-z
func IsASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsASCIIDigit reports whether c is in 0-9
func IsASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
