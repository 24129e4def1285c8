package history

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/chatkit/tokens"
)

// Trim returns the messages to submit alongside newContent so that
// overhead + count(newContent) + cost(result) <= budget.
//
// Pinned messages are always included. Unpinned messages are considered
// newest first and included while they fit; a message that does not fit is
// skipped and older ones are still considered. The result keeps the
// chronological order of messages and is a new slice.
//
// Trim fails with a *BudgetError when the pinned messages and the new
// content alone exceed the budget, and with the counter's error when a
// message cannot be counted.
func Trim(messages []Message, newContent string, overhead, budget int, counter tokens.Counter) ([]Message, error) {
	n, err := tokens.CountErr(counter, newContent)
	if err != nil {
		return nil, fmt.Errorf("count new content: %w", err)
	}
	required := overhead + n

	costs := make([]int, len(messages))
	pinned := 0
	for i, m := range messages {
		if costs[i], err = tokens.CountErr(counter, m.Content); err != nil {
			return nil, fmt.Errorf("count message %d: %w", i, err)
		}
		if m.Pin {
			pinned += costs[i]
		}
	}

	if required+pinned > budget {
		return nil, &BudgetError{Budget: budget, Required: required, Pinned: pinned}
	}

	keep := make([]bool, len(messages))
	used := pinned
	dropped := 0
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Pin {
			keep[i] = true
			continue
		}
		if required+used+costs[i] <= budget {
			keep[i] = true
			used += costs[i]
			continue
		}
		dropped++
	}

	window := make([]Message, 0, len(messages)-dropped)
	for i, m := range messages {
		if keep[i] {
			window = append(window, m)
		}
	}

	if dropped > 0 {
		slog.Debug("trimmed history",
			slog.Int("kept", len(window)),
			slog.Int("dropped", dropped),
			slog.Int("tokens", required+used),
			slog.Int("budget", budget))
	}

	return window, nil
}

// Cost returns the total token count of the messages' content.
func Cost(messages []Message, counter tokens.Counter) int {
	total := 0
	for _, m := range messages {
		total += counter.Count(m.Content)
	}
	return total
}
