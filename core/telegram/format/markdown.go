package format

import (
	"strings"
	"unicode/utf8"
)

// Legacy Markdown only knows these four escapes, and only outside entities.
const mdV1Special = "_*`["

var mdV1Replacer = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes user text for Telegram's legacy Markdown mode.
// The result must not be placed inside an entity; use Bold for that.
func EscapeMarkdown(text string) string {
	return mdV1Replacer.Replace(text)
}

// Bold renders text in bold. Special characters cannot be escaped inside
// an entity, so the bold run is closed before each one and reopened after.
func Bold(text string) string {
	var b strings.Builder
	for text != "" {
		i := strings.IndexAny(text, mdV1Special)
		if i < 0 {
			i = len(text)
		}
		if i > 0 {
			b.WriteString("*" + text[:i] + "*")
		}
		if i == len(text) {
			break
		}
		b.WriteString(`\` + text[i:i+1])
		text = text[i+1:]
	}
	return b.String()
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
