// Package detector is a thin wrapper around the lingua-go language
// detector, exposing ISO 639-1 codes matching the platform's language
// vocabulary.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over every language lingua knows.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// NewForCodes restricts detection to the given ISO 639-1 codes; region and
// script suffixes (pt_BR, sr@latin) are tolerated. A narrowed detector
// loads fewer language models and separates close languages better. Codes
// lingua does not know are dropped; lingua cannot build a detector from
// fewer than two languages, so in that case the full set is used.
func NewForCodes(codes ...string) *Detector {
	seen := map[lingua.Language]bool{}
	var langs []lingua.Language
	for _, code := range codes {
		if i := strings.IndexAny(code, "-_@"); i > 0 {
			code = code[:i]
		}
		lang := lingua.GetLanguageFromIsoCode639_1(lingua.GetIsoCode639_1FromValue(code))
		if lang == lingua.Unknown || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}

	if len(langs) < 2 {
		return New()
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
