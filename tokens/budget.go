package tokens

// DefaultMinAvailable is the minimum number of tokens kept free for the
// model's reply when no larger max_tokens is requested.
const DefaultMinAvailable = 1000

// Budget splits a model's context window between prompt history and the
// reply.
type Budget struct {
	// MaxSupported is the model's context window in tokens.
	MaxSupported int

	// MinAvailable is the smallest reply reservation.
	MinAvailable int

	// MaxTokens is the requested reply limit, or 0 when unset.
	MaxTokens int
}

// NewBudget creates a budget for a context window with the default reply
// reservation.
func NewBudget(maxSupported int) *Budget {
	return &Budget{
		MaxSupported: maxSupported,
		MinAvailable: DefaultMinAvailable,
	}
}

// Reserved returns the tokens held back for the reply:
// max(MinAvailable, MaxTokens).
func (b *Budget) Reserved() int {
	return max(b.MinAvailable, b.MaxTokens)
}

// History returns the tokens available to the prompt: the system prompt,
// history and the new message together.
func (b *Budget) History() int {
	return b.MaxSupported - b.Reserved()
}

// Fits returns true if used tokens fit in the history allowance.
func (b *Budget) Fits(used int) bool {
	return used <= b.History()
}

// Remaining returns the history allowance left after used tokens.
// It never goes below zero.
func (b *Budget) Remaining(used int) int {
	remaining := b.History() - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
