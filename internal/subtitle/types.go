package subtitle

import (
	"errors"
	"iter"
	"strings"
)

// Format identifies a timed-text encoding by its file extension.
type Format string

const (
	FormatVTT     Format = "vtt"
	FormatSRT     Format = "srt"
	FormatJSON3   Format = "json3"
	FormatUnknown Format = ""
)

// ParseFormat maps a file extension (with or without the dot) to a Format.
// yt-dlp writes json3 tracks as either .json3 or .json.
func ParseFormat(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "vtt":
		return FormatVTT
	case "srt":
		return FormatSRT
	case "json3", "json":
		return FormatJSON3
	default:
		return FormatUnknown
	}
}

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}

// Decoder turns raw caption bytes into text fragments in source order.
// Structural errors are returned before iteration starts.
type Decoder func(data []byte) (iter.Seq[string], error)

var ErrUnsupportedFormat = errors.New("unsupported subtitle format")
