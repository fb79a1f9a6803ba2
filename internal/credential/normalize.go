package credential

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims surrounding whitespace and collapses internal runs of
// whitespace to single spaces. Case is preserved: "GitHub" and "github"
// are different names.
func Normalize(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeGroup normalizes a group name, defaulting empty names to Unassigned.
func NormalizeGroup(s string) string {
	g := Normalize(s)
	if g == "" {
		return Unassigned
	}
	return g
}
