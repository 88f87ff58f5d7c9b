// Package normalize cleans up raw text before enrichment.
//
// Normalization is a pure string transform: whitespace is collapsed,
// line endings are unified, and typographic quotes are replaced with
// their straight equivalents. It never fails and is idempotent.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Runs of regular spaces and non-breaking spaces collapse to one space
	spaceRuns = regexp.MustCompile("[  ]+")
	// CRLF and bare CR both become LF
	lineEndings = regexp.MustCompile("\r\n?")
)

// quoteReplacer maps curly quote variants to straight quotes
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// Normalize applies the cleaning transforms in a fixed order: tabs to
// spaces, space runs collapsed, line endings unified, surrounding
// whitespace trimmed, curly quotes straightened. The content is not
// otherwise changed.
func Normalize(text string) string {
	t := strings.ReplaceAll(text, "\t", " ")
	t = spaceRuns.ReplaceAllString(t, " ")
	t = lineEndings.ReplaceAllString(t, "\n")
	t = strings.TrimSpace(t)
	return quoteReplacer.Replace(t)
}
