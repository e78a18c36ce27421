// Package textnorm canonicalizes extracted PDF text and query strings so that
// line breaks, irregular spacing, and letter case do not block matching.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeForSearch collapses every run of whitespace (including CR/LF) to a
// single space, trims both ends, and lower-cases the result.
func NormalizeForSearch(text string) string {
	return strings.ToLower(NormalizeForDisplay(text))
}

// NormalizeForDisplay applies the same whitespace collapsing as
// NormalizeForSearch but preserves case.
func NormalizeForDisplay(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// TextsMatch reports whether a and b are equal after search normalization.
func TextsMatch(a, b string) bool {
	return NormalizeForSearch(a) == NormalizeForSearch(b)
}

// FindNormalizedIndex returns the byte index of the normalized needle inside
// the normalized haystack, or -1.
func FindNormalizedIndex(haystack, needle string) int {
	n := NormalizeForSearch(needle)
	if n == "" {
		return -1
	}
	return strings.Index(NormalizeForSearch(haystack), n)
}

// MapNormalizedOffset converts a byte offset into NormalizeForSearch(raw) back
// to the byte offset of the corresponding rune in raw. Offsets that land on a
// collapsed space map to the start of the following word. Offsets past the end
// map to len(raw).
func MapNormalizedOffset(raw string, normOffset int) int {
	pos := 0
	started := false
	pendingSpace := false

	for i, r := range raw {
		if unicode.IsSpace(r) {
			if started {
				pendingSpace = true
			}
			continue
		}
		if pendingSpace {
			if pos >= normOffset {
				return i
			}
			pos++
			pendingSpace = false
		}
		if pos >= normOffset {
			return i
		}
		pos += utf8.RuneLen(unicode.ToLower(r))
		started = true
	}

	return len(raw)
}

// MapLowerOffset converts a byte offset into strings.ToLower(raw) back to the
// byte offset of the corresponding rune in raw. Lower-casing can change the
// encoded width of non-ASCII runes, so the two offsets may differ.
func MapLowerOffset(raw string, lowerOffset int) int {
	pos := 0
	for i, r := range raw {
		if pos >= lowerOffset {
			return i
		}
		pos += utf8.RuneLen(unicode.ToLower(r))
	}
	return len(raw)
}

// CharCount returns the number of Unicode code points in s. Length thresholds
// throughout the search path are expressed in characters, not bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
