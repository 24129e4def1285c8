package tokens

import (
	"unicode/utf8"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter counts tokens in text.
type Counter interface {
	// Count returns the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// FallibleCounter is a Counter that can report why text could not be counted.
type FallibleCounter interface {
	Counter
	CountErr(text string) (int, error)
}

// CountErr counts text with c, returning the counting error when c is an
// FallibleCounter. Other counters never fail.
func CountErr(c Counter, text string) (int, error) {
	if ec, ok := c.(FallibleCounter); ok {
		return ec.CountErr(text)
	}
	return c.Count(text), nil
}

// EstimatingCounter uses a character-to-token ratio for estimation.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	// Default is 4, which works well for English text.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with default settings.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{
		CharsPerToken: DefaultCharsPerToken,
	}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio (4.0) is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{
		CharsPerToken: charsPerToken,
	}
}

// Count estimates the number of tokens in the given text.
// Non-empty text always counts as at least one token.
func (c *EstimatingCounter) Count(text string) int {
	runeCount := utf8.RuneCountInString(text)
	if runeCount == 0 {
		return 0
	}

	n := int(float64(runeCount)/c.CharsPerToken + 0.5)
	if n == 0 {
		return 1
	}
	return n
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// CounterFunc adapts a plain function to the Counter interface.
type CounterFunc func(text string) int

// Count calls f(text).
func (f CounterFunc) Count(text string) int {
	return f(text)
}

// FitsInLimit returns true if f(text) <= limit.
func (f CounterFunc) FitsInLimit(text string, limit int) bool {
	return f(text) <= limit
}

// EstimateTokens is a convenience function for quick estimation
// using the default counter.
func EstimateTokens(text string) int {
	return NewEstimatingCounter().Count(text)
}
