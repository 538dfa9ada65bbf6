package translator

import (
	"fmt"
	"strings"

	"github.com/valpere/locflow/internal/placeholder"
)

// buildSystemPrompt produces the system prompt shared by the LLM backends.
// The strict variant is used for the single retry after a malformed
// response.
func buildSystemPrompt(sourceLang, targetLang, context string, strict bool) string {
	if sourceLang == "" || sourceLang == "auto" {
		sourceLang = "the detected language"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a professional software localizer. Translate the user's message from %s to %s.\n", sourceLang, targetLang))
	sb.WriteString("Reply with ONLY the translated text. No explanations, no quotes, no commentary of any kind.\n")
	sb.WriteString(placeholder.InstructionHint())

	if strict {
		sb.WriteString("\nYour previous reply was rejected because it contained extra text or altered a token. ")
		sb.WriteString("Output nothing but the translation and copy every token character for character.")
	}

	if context != "" {
		sb.WriteString(fmt.Sprintf("\n\nCONTEXT (for disambiguation only, do NOT translate or echo it):\n%s", context))
	}

	return sb.String()
}
