package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune matches the characters a word boundary separates
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// boundedAt reports whether text[start:end] is not glued to a word
// character on either side
func boundedAt(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// boundedMatches returns the byte offsets of the non-overlapping, word-bounded
// occurrences of needle in text, scanning left to right
func boundedMatches(text, needle string) []int {
	if needle == "" {
		return nil
	}

	var offsets []int
	for from := 0; from <= len(text)-len(needle); {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			break
		}

		start := from + i
		end := start + len(needle)
		if boundedAt(text, start, end) {
			offsets = append(offsets, start)
			from = end
			continue
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}

	return offsets
}

// countBounded counts word-bounded occurrences of needle in text
func countBounded(text, needle string) int {
	return len(boundedMatches(text, needle))
}
