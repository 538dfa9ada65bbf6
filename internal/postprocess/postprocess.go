// Package postprocess strips common LLM artifacts from a translated unit
// before validation. It normalizes the honest mistakes (wrapping, echoes,
// leaked reasoning); anything it cannot repair is left for the validator
// to reject.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean normalizes raw LLM output and returns the trimmed result. Phases:
//  1. leaked reasoning blocks (<think>…</think> and friends)
//  2. markdown code fences wrapping the whole reply
//  3. instruction echoes ("Here is the translation: …")
//  4. a matching pair of outer quotes
func Clean(text string) string {
	text = stripReasoning(text)
	text = stripCodeFence(text)
	text = stripEchoes(text)
	text = stripOuterQuotes(text)
	return strings.TrimSpace(text)
}

// reasoningRe matches complete reasoning blocks. Each tag variant is listed
// explicitly because RE2 has no backreferences.
var reasoningRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// openReasoningRe matches a reasoning tag the model never closed.
var openReasoningRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func stripReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// fenceRe matches a reply that is nothing but one fenced block, with an
// optional language tag after the opening fence.
var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z0-9._-]*\n?(.*?)\n?```$")

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// echoRes match introductory phrases models prepend even when told not to.
// Anchored to the start and requiring a colon to avoid eating legitimate
// content.
var echoRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated |final )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translated text|translation)\s*:`),
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,.]? ?(?:here(?:'s| is)(?: the)? (?:translated |final )?(?:translation|text))?\s*:`),
}

func stripEchoes(text string) string {
	for _, re := range echoRes {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// stripOuterQuotes removes one matching pair of quotes wrapping the whole
// reply. Supported pairs: "…" '…' «…» "…" '…'
func stripOuterQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
