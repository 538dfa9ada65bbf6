// Package placeholder recognizes structural tokens inside translatable
// strings (printf verbs, interpolation markers, HTML tags) that must
// survive translation byte for byte. The platform renders these tokens at
// runtime; a translation that alters one is rejected, not repaired.
package placeholder

import (
	"regexp"
)

// tokenRe matches, in order of preference:
//  1. double-brace interpolations: {{count}}, {{ user.name }}
//  2. single-brace interpolations: {name}, {0}
//  3. python-style named verbs: %(name)s
//  4. printf verbs, including positional: %s, %d, %1$s, %.2f
//  5. HTML/XML tags: <b>, </a>, <br/>
//
// Alternatives are tried leftmost-first, so the longer brace forms win
// over the shorter ones.
var tokenRe = regexp.MustCompile(
	`\{\{[^{}]+\}\}` +
		`|\{[A-Za-z0-9_.]+\}` +
		`|%\([A-Za-z_][A-Za-z0-9_]*\)[sdif]` +
		`|%(?:\d+\$)?[-+#0]*\d*(?:\.\d+)?[bcdeEfgGoqstTuUvxX]` +
		`|<[^<>]+>`,
)

// Tokens returns every structural token of text in order of appearance,
// duplicates included.
func Tokens(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// Missing compares the tokens of source against translated and returns the
// source tokens that do not survive byte-identically. A token occurring N
// times in the source must occur at least N times in the translation.
// Counting is over tokenized matches, not substrings, so {name} is not
// satisfied by a translation that grew it into {{name}}.
func Missing(source, translated string) []string {
	need := map[string]int{}
	var order []string
	for _, tok := range Tokens(source) {
		if need[tok] == 0 {
			order = append(order, tok)
		}
		need[tok]++
	}

	have := map[string]int{}
	for _, tok := range Tokens(translated) {
		have[tok]++
	}

	var missing []string
	for _, tok := range order {
		if have[tok] < need[tok] {
			missing = append(missing, tok)
		}
	}
	return missing
}

// InstructionHint returns a sentence to append to an LLM prompt so the
// model knows tokens are off limits.
func InstructionHint() string {
	return "The text may contain placeholders such as %s, %(name)s, {count}, {{value}} or HTML tags. Copy each one into the translation exactly as written. Never translate, reorder, or drop them."
}
