package transcript

import (
	"sort"

	"github.com/MimeLyc/caption-transcript/internal/subtitle"
)

// Variant is one rendition of a caption track.
type Variant struct {
	Locator   string
	Ext       string
	Language  string
	Automatic bool
}

func (v Variant) Format() subtitle.Format {
	return subtitle.ParseFormat(v.Ext)
}

// TrackSet maps a language tag to its variants in collaborator order.
type TrackSet map[string][]Variant

// Languages returns the tags in the set, sorted.
func (s TrackSet) Languages() []string {
	ret := make([]string, 0, len(s))
	for lang := range s {
		ret = append(ret, lang)
	}
	sort.Strings(ret)
	return ret
}

// Transcript is a decoded, normalized caption track plus video metadata.
type Transcript struct {
	Text       string  `json:"transcript"`
	Language   string  `json:"language"`
	Format     string  `json:"format"`
	VideoTitle string  `json:"video_title"`
	VideoID    string  `json:"video_id"`
	Duration   float64 `json:"duration"`
}
