package langtag

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Lang identifies one of the two languages the model translates between.
type Lang string

const (
	English    Lang = "en"
	Vietnamese Lang = "vi"
)

// Parse validates a source language code from a request payload.
func Parse(s string) (Lang, error) {
	switch Lang(s) {
	case English:
		return English, nil
	case Vietnamese:
		return Vietnamese, nil
	}
	return "", fmt.Errorf("unsupported language %q (want \"en\" or \"vi\")", s)
}

// Supported lists every language accepted as a translation source.
func Supported() []Lang { return []Lang{English, Vietnamese} }

// Prefix returns the tag prepended to model input for text in this language,
// e.g. "en: " for English. The model family was trained on this convention.
func (l Lang) Prefix() string { return string(l) + ": " }

// Opposite returns the translation target for this source language.
func (l Lang) Opposite() Lang {
	if l == English {
		return Vietnamese
	}
	return English
}

// DisplayName returns the English name of the language, e.g. "Vietnamese".
func (l Lang) DisplayName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	return display.English.Languages().Name(tag)
}

// StripPrefix removes a leading language tag from model output and trims the
// surrounding whitespace. The model usually echoes the target-language tag but
// is not contractually bound to; output without a recognized prefix is
// returned unchanged.
func StripPrefix(raw string) string {
	for _, l := range Supported() {
		if p := l.Prefix(); strings.HasPrefix(raw, p) {
			return strings.TrimSpace(raw[len(p):])
		}
	}
	return raw
}
