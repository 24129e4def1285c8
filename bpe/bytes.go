package bpe

// byteToRune maps every byte value to the printable rune that stands for it
// inside token strings. Printable Latin-1 bytes map to themselves; the other
// 68 bytes are shifted to 256 and up, in byte order. runeToByte is the
// inverse.
var byteToRune, runeToByte = byteTables()

func byteTables() ([256]rune, map[rune]byte) {
	var forward [256]rune
	inverse := make(map[rune]byte, 256)
	n := 0
	for b := 0; b < 256; b++ {
		r := rune(b)
		if !printable(b) {
			r = rune(256 + n)
			n++
		}
		forward[b] = r
		inverse[r] = byte(b)
	}
	return forward, inverse
}

func printable(b int) bool {
	return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
}

// ByteToRune returns the symbol rune used for a raw byte.
func ByteToRune(b byte) rune {
	return byteToRune[b]
}

// RuneToByte returns the raw byte a symbol rune stands for.
// The second result is false for runes outside the byte alphabet.
func RuneToByte(r rune) (byte, bool) {
	b, ok := runeToByte[r]
	return b, ok
}

// symbolize maps the bytes of s to their symbol strings.
func symbolize(s string) []string {
	symbols := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		symbols[i] = string(byteToRune[s[i]])
	}
	return symbols
}
