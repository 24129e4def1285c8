package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitBudget      = 3
	exitAuth        = 4
	exitUnavailable = 5
	exitNotFound    = 6
	exitInterrupted = 130
)

// report prints err with a hint when one applies and returns the exit code.
func report(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(w, "error: %v\n", err)

	var (
		usage  *usageError
		budget *history.BudgetError
	)
	switch {
	case errors.As(err, &usage):
		return exitUsage
	case errors.As(err, &budget):
		fmt.Fprintf(w, "hint: %s\n", budget.Hint())
		return exitBudget
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case provider.IsAuthError(err):
		fmt.Fprintln(w, "hint: set the vendor's API key (for example C_OPENAI_API_KEY) or add it to config.toml")
		return exitAuth
	case errors.Is(err, provider.ErrRateLimited),
		errors.Is(err, provider.ErrUnavailable),
		errors.Is(err, provider.ErrTimeout):
		if provider.IsRetryable(err) {
			fmt.Fprintln(w, "hint: the vendor may recover; try again")
		}
		return exitUnavailable
	case errors.Is(err, session.ErrNotFound):
		fmt.Fprintln(w, "hint: run 'c sessions list' to see saved sessions")
		return exitNotFound
	}
	return exitError
}
