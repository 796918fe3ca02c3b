package subtitle

import (
	"fmt"
	"iter"
	"strings"
)

var decoders = map[Format]Decoder{
	FormatVTT:   decodeVTT,
	FormatSRT:   decodeSRT,
	FormatJSON3: decodeJSON3,
}

// Supported reports whether a decoder is registered for f.
func Supported(f Format) bool {
	_, ok := decoders[f]
	return ok
}

// Decode returns the lazy fragment sequence for data in the given format.
func Decode(f Format, data []byte) (iter.Seq[string], error) {
	dec, ok := decoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return dec(data)
}

// Text decodes data and joins every fragment followed by a single space.
// Whitespace is left as-is; callers normalize.
func Text(f Format, data []byte) (string, error) {
	fragments, err := Decode(f, data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for frag := range fragments {
		sb.WriteString(frag)
		sb.WriteByte(' ')
	}
	return sb.String(), nil
}

// lines yields trimmed lines of content, tolerating CRLF.
func lines(data []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(string(data), "\n") {
			if !yield(strings.TrimSpace(line)) {
				return
			}
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
