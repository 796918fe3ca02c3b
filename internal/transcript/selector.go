package transcript

import (
	"strings"

	"github.com/MimeLyc/caption-transcript/internal/ytdlp"
)

// MergeTracks builds the selectable TrackSet from yt-dlp listings, keeping
// tags that start with one of families. Manual subtitles take precedence over
// automatic captions for the same tag; an empty manual listing does not hide
// automatic variants.
func MergeTracks(automatic, manual map[string][]ytdlp.Track, families []string) TrackSet {
	set := make(TrackSet)
	add := func(listing map[string][]ytdlp.Track, auto bool) {
		for lang, tracks := range listing {
			if len(tracks) == 0 || !inFamily(lang, families) {
				continue
			}
			variants := make([]Variant, 0, len(tracks))
			for _, tr := range tracks {
				variants = append(variants, Variant{
					Locator:   tr.URL,
					Ext:       tr.Ext,
					Language:  lang,
					Automatic: auto,
				})
			}
			set[lang] = variants
		}
	}

	add(automatic, true)
	add(manual, false)
	return set
}

func inFamily(lang string, families []string) bool {
	for _, f := range families {
		if strings.HasPrefix(lang, f) {
			return true
		}
	}
	return false
}

// Select returns the first variant of the first preferred tag that has any.
// Variants of one tag are not compared; index 0 wins.
func Select(set TrackSet, preferences []string) (Variant, bool) {
	for _, lang := range preferences {
		if variants := set[lang]; len(variants) > 0 {
			return variants[0], true
		}
	}
	return Variant{}, false
}
