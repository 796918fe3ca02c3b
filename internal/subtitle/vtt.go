package subtitle

import (
	"iter"
	"regexp"
	"strings"
)

// styleTagRe matches <c>, </c>, <c.class...> and inline cue timestamps such as
// <00:00:01.520> that auto-generated tracks put between words.
var styleTagRe = regexp.MustCompile(`</?c(?:\.[^>]*)?>|<\d{2}:\d{2}:\d{2}\.\d{3}>`)

func decodeVTT(data []byte) (iter.Seq[string], error) {
	return func(yield func(string) bool) {
		for line := range lines(data) {
			if line == "" ||
				strings.HasPrefix(line, "WEBVTT") ||
				strings.HasPrefix(line, "NOTE") ||
				strings.Contains(line, "-->") ||
				isDigits(line) {
				continue
			}
			clean := styleTagRe.ReplaceAllString(line, "")
			if clean == "" {
				continue
			}
			if !yield(clean) {
				return
			}
		}
	}, nil
}
