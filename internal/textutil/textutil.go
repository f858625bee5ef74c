// Package textutil holds the pure text helpers shared by pipeline stages.
package textutil

import (
	"regexp"
	"strings"
)

var (
	tagExpr = regexp.MustCompile(`<[^>]*>`)
	imgExpr = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// Normalize strips markup, decodes the five common entities and collapses
// whitespace. Tags are removed before entities are decoded, so escaped markup
// survives as literal text.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := tagExpr.ReplaceAllString(raw, "")
	text = entityReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most maxRunes runes without splitting UTF-8 sequences.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen counts runes rather than bytes; Telugu text is multi-byte.
func RuneLen(s string) int {
	return len([]rune(s))
}

// FirstImageSrc returns the src of the first <img> tag found in an HTML fragment.
func FirstImageSrc(html string) string {
	match := imgExpr.FindStringSubmatch(html)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
