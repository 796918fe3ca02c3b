package subtitle

import (
	"iter"
	"strings"
)

func decodeSRT(data []byte) (iter.Seq[string], error) {
	return func(yield func(string) bool) {
		for line := range lines(data) {
			if line == "" || isDigits(line) || strings.Contains(line, "-->") {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}
