package subtitle

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// DetectLanguage guesses the language of a transcript. It returns language.Und
// for empty input or when the detector is not confident.
func DetectLanguage(text string) language.Tag {
	if text == "" {
		return language.Und
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return language.Und
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return language.Und
	}

	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}
