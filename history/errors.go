package history

import (
	"errors"
	"fmt"
)

// ErrBudgetExceeded indicates pinned messages and the new input cannot fit
// the token budget.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// BudgetError reports why a budget could not be met.
type BudgetError struct {
	Budget   int // Token budget for the prompt
	Required int // Overhead plus the new input
	Pinned   int // Total cost of pinned messages
}

// Error implements the error interface.
func (e *BudgetError) Error() string {
	return fmt.Sprintf("%v: need %d tokens (%d required + %d pinned), budget is %d",
		ErrBudgetExceeded, e.Required+e.Pinned, e.Required, e.Pinned, e.Budget)
}

// Unwrap returns ErrBudgetExceeded for errors.Is support.
func (e *BudgetError) Unwrap() error {
	return ErrBudgetExceeded
}

// Over returns how many tokens the request is over budget.
func (e *BudgetError) Over() int {
	return e.Required + e.Pinned - e.Budget
}

// Hint suggests how the user can fix the error.
func (e *BudgetError) Hint() string {
	if e.Pinned > 0 && e.Pinned >= e.Over() {
		return "unpin a message or raise max_supported_tokens"
	}
	return "shorten the prompt or raise max_supported_tokens"
}
