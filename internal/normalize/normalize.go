package normalize

import (
	"regexp"
	"strings"
)

var (
	// Anything outside [a-z0-9] and whitespace is dropped entirely.
	invalidChars = regexp.MustCompile(`[^a-z0-9\s]+`)
	// Runs of whitespace collapse into a single separator.
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Column converts an arbitrary header string into a canonical column
// identifier: trimmed, lower-cased, stripped of punctuation, with
// whitespace runs replaced by single underscores.
func Column(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Header applies Column to every element of a header row, preserving
// order. The input slice is not modified.
func Header(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Column(c)
	}
	return out
}
