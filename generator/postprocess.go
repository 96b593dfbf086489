package generator

import (
	"regexp"
	"strings"
)

var internalLinkRe = regexp.MustCompile(`\[INTERNAL_LINK:\s*(.*?)\]`)

// NormalizeInternalLinks rewrites every [INTERNAL_LINK: topic] marker the
// model emits into plain [topic] display syntax. Idempotent: once the prefix
// is stripped there is nothing left to match. Text outside markers is
// untouched.
func NormalizeInternalLinks(s string) string {
	return internalLinkRe.ReplaceAllString(s, "[$1]")
}

// CountWords counts whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
