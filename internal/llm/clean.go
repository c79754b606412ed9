package llm

import (
	"strings"
	"unicode"
)

// CleanPostText normalizes raw model output into post text: surrounding
// whitespace, markdown code fences and wrapping quotes are removed, and the
// result is clamped to maxChars runes, preferring a word boundary.
func CleanPostText(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Strip markdown code fences
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines)
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		if len(lines) > 1 {
			text = strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
		}
	}

	text = stripQuotes(text)
	return Truncate(text, maxChars)
}

// Truncate clamps s to at most maxChars runes. When a cut is needed it backs
// up to the last whitespace, unless that would drop more than half the text.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	cut := runes[:maxChars]
	for i := len(cut) - 1; i > maxChars/2; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

var quotePairs = [][2]string{
	{`"`, `"`},
	{"'", "'"},
	{"“", "”"},
}

func stripQuotes(s string) string {
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			inner := s[len(q[0]) : len(s)-len(q[1])]
			// Leave text alone when the quotes are not a single wrapping pair.
			if strings.Contains(inner, q[0]) || strings.Contains(inner, q[1]) {
				continue
			}
			return strings.TrimSpace(inner)
		}
	}
	return s
}
