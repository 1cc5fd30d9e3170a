package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords extracts the significant tokens of a prompt as a set.
// Words are split on whitespace, stripped of non-alphanumerics and lowercased;
// stop words and words shorter than MinKeywordLength are dropped.
func Keywords(prompt string) map[string]bool {
	set := make(map[string]bool)
	for _, field := range strings.Fields(prompt) {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		word := b.String()
		if utf8.RuneCountInString(word) < MinKeywordLength || StopWords[word] {
			continue
		}
		set[word] = true
	}
	return set
}

// Overlap returns the number of tokens two keyword sets share.
func Overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

// Truncate shortens s to maxChars runes, appending "..." when cut.
func Truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + "..."
}
