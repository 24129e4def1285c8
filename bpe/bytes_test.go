package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteToRune_Bijection(t *testing.T) {
	seen := make(map[rune]bool, 256)
	for b := 0; b < 256; b++ {
		r := ByteToRune(byte(b))
		assert.False(t, seen[r], "rune %q assigned twice", r)
		seen[r] = true

		back, ok := RuneToByte(r)
		assert.True(t, ok)
		assert.Equal(t, byte(b), back)
	}
}

func TestByteToRune_KnownSymbols(t *testing.T) {
	tests := []struct {
		b    byte
		want rune
	}{
		{'a', 'a'},
		{'!', '!'},
		{'~', '~'},
		{0x00, 'Ā'},
		{' ', 'Ġ'},
		{'\n', 'Ċ'},
		{0xAD, 'Ń'},
		{0xFF, 'ÿ'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ByteToRune(tt.b), "byte 0x%02x", tt.b)
	}
}

func TestRuneToByte_Unknown(t *testing.T) {
	_, ok := RuneToByte('😀')
	assert.False(t, ok)
}

// spaceAtInit is read during package variable initialization.
var spaceAtInit = ByteToRune(' ')

func TestByteToRune_ReadyForPackageVars(t *testing.T) {
	assert.Equal(t, 'Ġ', spaceAtInit)
	assert.Equal(t, "Ġ", sp)
}
