package truncate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/randalmurphal/chatkit/tokens"
)

// Marker is appended to text that was cut.
const Marker = "..."

// Preview flattens text onto one line and cuts it to maxTokens.
// A maxTokens <= 0 disables the cut.
func Preview(text string, maxTokens int, counter tokens.Counter) string {
	flat := Flatten(text)
	if maxTokens <= 0 {
		return flat
	}
	out, _ := Tokens(flat, maxTokens, counter)
	return out
}

// Tokens cuts text from the end so that it, plus Marker, fits in
// maxTokens. It reports whether a cut happened.
func Tokens(text string, maxTokens int, counter tokens.Counter) (string, bool) {
	if counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	target := maxTokens - counter.Count(Marker)
	if target <= 0 {
		return Marker, true
	}

	// Largest rune prefix that fits the target.
	runes := []rune(text)
	low, high := 0, len(runes)
	for low < high {
		mid := (low + high + 1) / 2
		if counter.FitsInLimit(string(runes[:mid]), target) {
			low = mid
		} else {
			high = mid - 1
		}
	}

	return strings.TrimRightFunc(string(runes[:low]), unicode.IsSpace) + Marker, true
}

// Width cuts text to at most cols runes, Marker included.
func Width(text string, cols int) string {
	if cols <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= cols {
		return text
	}

	runes := []rune(text)
	if cols <= len(Marker) {
		return string(runes[:cols])
	}
	return string(runes[:cols-len(Marker)]) + Marker
}

// Flatten collapses every whitespace run, newlines included, into a single
// space and trims both ends.
func Flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
