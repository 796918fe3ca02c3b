package transcript

import "strings"

// Normalize trims s and collapses every whitespace run, newlines included,
// to a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
