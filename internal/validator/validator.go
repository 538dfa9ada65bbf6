// Package validator checks that a translated unit actually arrived in the
// target language. An LLM that answers in the source language, or echoes an
// explanation, is caught here and treated as a malformed response.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/locflow/internal/detector"
	"github.com/valpere/locflow/internal/placeholder"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and pass unchecked.
const minValidationLength = 20

// Validator checks translation output language. The underlying detector is
// expensive to build; construct once and reuse across the whole run.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// NewForLanguages creates a Validator whose detector only considers the
// given codes. Pass the run's target locales plus the source language; a
// detector that cannot answer "source" would misread an untranslated echo
// as the nearest target language.
func NewForLanguages(codes ...string) *Validator {
	return &Validator{det: detector.NewForCodes(codes...)}
}

// IsValid reports whether translatedText appears to be written in
// targetLang. Placeholder tokens are stripped before detection so that a
// token-heavy string is judged by its prose alone.
//
// Short texts and texts whose language cannot be determined pass without
// error. When the detected language differs from targetLang the returned
// error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	for _, tok := range placeholder.Tokens(text) {
		text = strings.ReplaceAll(text, tok, " ")
	}
	text = strings.TrimSpace(text)

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language, cannot validate.
		return true, nil
	}

	want := baseCode(targetLang)
	if !strings.EqualFold(detected, want) {
		return false, fmt.Errorf("expected %s but detected %s", want, detected)
	}

	return true, nil
}

// baseCode strips a region or script suffix from a platform language code:
// pt_BR and pt-BR both reduce to pt.
func baseCode(code string) string {
	if i := strings.IndexAny(code, "-_@"); i > 0 {
		return code[:i]
	}
	return code
}
