package tokens

import (
	"log/slog"

	"github.com/randalmurphal/chatkit/bpe"
)

// BPECounter counts tokens with a byte-pair encoder.
// It is safe for concurrent use.
type BPECounter struct {
	encoder  *bpe.Encoder
	fallback Counter
}

// NewBPECounter creates a counter backed by the given encoder.
func NewBPECounter(encoder *bpe.Encoder) *BPECounter {
	return &BPECounter{
		encoder:  encoder,
		fallback: NewEstimatingCounter(),
	}
}

// Encoder returns the underlying encoder.
func (c *BPECounter) Encoder() *bpe.Encoder {
	return c.encoder
}

// Count returns the exact number of tokens in text. If the vocabulary
// cannot encode the text, the failure is logged and the character estimate
// is returned instead.
func (c *BPECounter) Count(text string) int {
	n, err := c.encoder.Count(text)
	if err != nil {
		slog.Warn("token count fell back to estimate",
			slog.Any("error", err),
			slog.Int("chars", len(text)))
		return c.fallback.Count(text)
	}
	return n
}

// CountErr returns the exact number of tokens in text or the encoding error.
func (c *BPECounter) CountErr(text string) (int, error) {
	return c.encoder.Count(text)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *BPECounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}
