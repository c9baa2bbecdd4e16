package services

import (
	"strings"

	"jira-merge-gate/models"
)

// maxExtraProjectChars is how many letters or digits may follow the first letter of a project code
const maxExtraProjectChars = models.MaxProjectCodeLength - 1

// ExtractIssueKeys returns every issue key found in text, left to right, duplicates included.
//
// A key is a letter, up to nine more letters or digits, a hyphen and one or more digits.
// Matching is case-insensitive and keys are returned upper-cased. Start offsets are tried
// left to right; at each one the longest project code is tried first and shortened one
// character at a time. Matches never overlap. Because the project code is capped, a run of
// more than ten letters or digits before "-<digits>" yields its last ten characters.
//
// The scan is linear in len(text) and allocates only for the result.
func ExtractIssueKeys(text string) models.IssueKeys {
	var keys models.IssueKeys

	for start := 0; start < len(text); {
		if !models.IsASCIILetter(text[start]) {
			start++
			continue
		}

		key, end, ok := matchIssueKeyAt(text, start)
		if !ok {
			start++
			continue
		}

		keys = append(keys, key)
		start = end
	}

	return keys
}

// matchIssueKeyAt tries to match a key whose project code begins at text[start], which must
// be a letter. It returns the key and the offset just past the digit run.
func matchIssueKeyAt(text string, start int) (models.IssueKey, int, bool) {
	// Longest letter/digit run after the first letter, capped at the project code limit
	run := 0
	for run < maxExtraProjectChars {
		i := start + 1 + run
		if i >= len(text) || !isAlphanumeric(text[i]) {
			break
		}
		run++
	}

	for extra := run; extra >= 0; extra-- {
		hyphen := start + 1 + extra
		if hyphen+1 >= len(text) || text[hyphen] != '-' || !models.IsASCIIDigit(text[hyphen+1]) {
			continue
		}

		end := hyphen + 1
		for end < len(text) && models.IsASCIIDigit(text[end]) {
			end++
		}

		return models.IssueKey{
			ProjectCode: strings.ToUpper(text[start:hyphen]),
			Number:      text[hyphen+1 : end],
		}, end, true
	}

	return models.IssueKey{}, 0, false
}

func isAlphanumeric(c byte) bool {
	return models.IsASCIILetter(c) || models.IsASCIIDigit(c)
}
