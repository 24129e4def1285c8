package tokens

import (
	"encoding/json"
	"testing"

	"github.com/randalmurphal/chatkit/bpe"
)

// byteTokenMap returns an encoder.json body holding the 256 byte symbols
// followed by the given merged tokens.
func byteTokenMap(t testing.TB, merged ...string) []byte {
	t.Helper()

	ids := make(map[string]int, 256+len(merged))
	for b := range 256 {
		ids[string(bpe.ByteToRune(byte(b)))] = b
	}
	for i, tok := range merged {
		ids[tok] = 256 + i
	}

	data, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("marshal token map: %v", err)
	}
	return data
}

// helloVocabulary merges "hello" into a single token.
func helloVocabulary(t testing.TB) (tokenMap, mergeRules []byte) {
	t.Helper()
	tokenMap = byteTokenMap(t, "he", "ll", "hell", "hello")
	mergeRules = []byte("#version: 0.2\nh e\nl l\nhe ll\nhell o\n")
	return tokenMap, mergeRules
}
