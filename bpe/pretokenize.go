package bpe

import (
	"iter"

	"github.com/dlclark/regexp2"
)

// Pattern is the GPT-2 pre-tokenization rule. The trailing-whitespace
// lookahead keeps the last space of a run attached to the following word.
const Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

var pretokenPattern = regexp2.MustCompile(Pattern, regexp2.None)

// Pretokens splits text into pre-tokens. The sequence is lazy and can be
// ranged over more than once. For valid UTF-8 input, concatenating its
// elements yields text; invalid bytes are replaced with U+FFFD before
// splitting.
func Pretokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}

		runes := []rune(text)
		pos := 0

		m, err := pretokenPattern.FindRunesMatch(runes)
		for err == nil && m != nil {
			// The pattern covers every rune, but never drop input if it does not.
			if m.Index > pos {
				if !yield(string(runes[pos:m.Index])) {
					return
				}
			}
			if !yield(m.String()) {
				return
			}
			pos = m.Index + m.Length
			m, err = pretokenPattern.FindNextMatch(m)
		}

		if pos < len(runes) {
			yield(string(runes[pos:]))
		}
	}
}
