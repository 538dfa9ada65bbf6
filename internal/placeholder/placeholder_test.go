package placeholder

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no tokens",
			text: "Plain text with nothing special.",
			want: nil,
		},
		{
			name: "printf verbs",
			text: "Found %d results for %s",
			want: []string{"%d", "%s"},
		},
		{
			name: "positional printf",
			text: "%1$s owes %2$d credits",
			want: []string{"%1$s", "%2$d"},
		},
		{
			name: "python named",
			text: "Hello %(user)s, you have %(count)d messages",
			want: []string{"%(user)s", "%(count)d"},
		},
		{
			name: "brace interpolation",
			text: "Welcome back, {name}! Credits: {0}",
			want: []string{"{name}", "{0}"},
		},
		{
			name: "double brace wins over single",
			text: "You have {{count}} new items",
			want: []string{"{{count}}"},
		},
		{
			name: "html tags",
			text: "Click <a href=\"/help\">here</a> for <b>help</b>",
			want: []string{"<a href=\"/help\">", "</a>", "<b>", "</b>"},
		},
		{
			name: "plain percent is not a token",
			text: "50% off everything!",
			want: nil,
		},
		{
			name: "duplicates kept",
			text: "%s vs %s",
			want: []string{"%s", "%s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		translated string
		want       []string
	}{
		{
			name:       "all preserved",
			source:     "Hello %s, you have {count} items",
			translated: "Hola %s, tienes {count} elementos",
			want:       nil,
		},
		{
			name:       "token dropped",
			source:     "Hello %s",
			translated: "Hola",
			want:       []string{"%s"},
		},
		{
			name:       "token translated",
			source:     "You have {count} items",
			translated: "Tienes {cantidad} elementos",
			want:       []string{"{count}"},
		},
		{
			name:       "duplicate needs both occurrences",
			source:     "%s and %s",
			translated: "%s y algo",
			want:       []string{"%s"},
		},
		{
			name:       "reordering is fine",
			source:     "%1$s gave %2$s",
			translated: "%2$s recibió de %1$s",
			want:       nil,
		},
		{
			name:       "html tag altered",
			source:     "See <b>notes</b>",
			translated: "Ver <strong>notas</strong>",
			want:       []string{"<b>", "</b>"},
		},
		{
			name:       "grown braces are not the same token",
			source:     "Hello {name}",
			translated: "Hola {{name}}",
			want:       []string{"{name}"},
		},
		{
			name:       "token inside a longer token does not count",
			source:     "Click <a>",
			translated: "Haz clic en <a href=\"x\">",
			want:       []string{"<a>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.source, tt.translated)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing(%q, %q) = %v, want %v", tt.source, tt.translated, got, tt.want)
			}
		})
	}
}

func TestInstructionHint(t *testing.T) {
	hint := InstructionHint()
	if hint == "" {
		t.Fatal("expected non-empty hint")
	}
	for _, needle := range []string{"%s", "{count}", "Never"} {
		if !strings.Contains(hint, needle) {
			t.Errorf("hint should mention %q", needle)
		}
	}
}
