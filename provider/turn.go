package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// TurnOptions control one exchange.
type TurnOptions struct {
	// Pin marks the new user message as pinned.
	Pin bool

	// Stream requests a streamed reply. OnChunk receives each text delta.
	Stream  bool
	OnChunk func(string)

	// Timeout bounds the vendor call. 0 means no timeout.
	Timeout time.Duration
}

// Result is the outcome of a successful turn.
type Result struct {
	// Reply is the vendor's answer.
	Reply Reply

	// Window is the history submitted with the prompt.
	Window []history.Message

	// Overhead is the token cost reserved outside of messages, including
	// the reply reservation.
	Overhead int

	// Budget is the token budget the window was trimmed to.
	Budget tokens.Budget
}

// Turn runs one exchange: it trims the session history to fit the model's
// context, sends the window and prompt to the vendor, and on success appends
// the prompt and reply to the session. The session is unchanged on error.
func Turn(ctx context.Context, a Adapter, sess *session.Session, prompt string, counter tokens.Counter, opts TurnOptions) (*Result, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if a.Vendor() != sess.Vendor {
		return nil, fmt.Errorf("%w: session %q uses %s, adapter is %s",
			ErrInvalidRequest, sess.ID, sess.Vendor, a.Vendor())
	}

	options := Options(sess.Options)
	params := options.Params()

	budget := tokens.Budget{
		MaxSupported: sess.MaxSupportedTokens,
		MinAvailable: options.GetInt(OptMinAvailableTokens, tokens.DefaultMinAvailable),
		MaxTokens:    params.MaxTokens,
	}
	overhead := a.Overhead(params.System, counter) + budget.Reserved()

	window, err := sess.SubmissionWindow(prompt, overhead, counter)
	if err != nil {
		return nil, err
	}

	req, err := a.BuildRequest(Exchange{Window: window, Prompt: prompt, Params: params})
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	slog.Debug("sending turn",
		slog.String("vendor", string(a.Vendor())),
		slog.String("session", sess.ID),
		slog.Int("window", len(window)),
		slog.Int("history", len(sess.History)),
		slog.Int("overhead", overhead))

	start := time.Now()
	var resp any
	if opts.Stream && a.Capabilities().Streaming {
		onChunk := opts.OnChunk
		if onChunk == nil {
			onChunk = func(string) {}
		}
		resp, err = a.Stream(ctx, req, onChunk)
	} else {
		resp, err = a.Send(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	reply, err := a.ParseResponse(resp)
	if err != nil {
		return nil, err
	}
	reply.Duration = time.Since(start)

	user := history.Human(prompt)
	user.Pin = opts.Pin
	sess.Append(user)
	sess.Append(history.Assistant(reply.Content))

	slog.Info("turn complete",
		slog.String("vendor", string(a.Vendor())),
		slog.String("model", reply.Model),
		slog.Int("input_tokens", reply.Usage.InputTokens),
		slog.Int("output_tokens", reply.Usage.OutputTokens),
		slog.Duration("duration", reply.Duration))

	return &Result{
		Reply:    reply,
		Window:   window,
		Overhead: overhead,
		Budget:   budget,
	}, nil
}
