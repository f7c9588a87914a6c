package analysis

import (
	"strings"
	"unicode/utf8"
)

// wordCount counts whitespace-delimited tokens of the trimmed text.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// characterCount counts runes, not bytes, so multibyte scripts measure the way
// users see them.
func characterCount(text string) int {
	return utf8.RuneCountInString(text)
}
