// Package history holds conversation messages and trims them to a token
// budget.
//
// Trim selects the messages sent to a vendor for one turn. Pinned messages
// are always kept; unpinned messages are kept newest first while they fit:
//
//	window, err := history.Trim(sess.History, prompt, overhead, budget, counter)
//	if errors.Is(err, history.ErrBudgetExceeded) {
//	    // pinned messages alone do not fit
//	}
//
// The returned window is a new slice in chronological order. The input
// history is never modified.
package history
