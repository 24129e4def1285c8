// Command c chats with language model APIs from the terminal, keeping each
// conversation in a session file trimmed to the model's context window.
//
// Usage:
//
//	c openai "explain this stack trace" < trace.txt
//	c anthropic --session review --pin "you review Go code"
//	c sessions show review --preview 20
//	c tokens count *.go
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/chatkit/session"

	// Vendor adapters register themselves with the provider registry.
	_ "github.com/randalmurphal/chatkit/anthropic"
	_ "github.com/randalmurphal/chatkit/ollama"
	_ "github.com/randalmurphal/chatkit/openai"
	_ "github.com/randalmurphal/chatkit/vertex"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(report(os.Stderr, err))
}

// run executes one invocation of c.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := newApp(stdin, stdout, stderr)
	return a.root().Execute(ctx, args)
}

func (a *app) root() *command {
	return &command{
		Name:    "c",
		Summary: "Chat with language model APIs, keeping the conversation within the context window",
		Subcommands: []*command{
			a.vendorCommand(session.VendorOpenAI, []string{"o"}, "Chat with the OpenAI API"),
			a.vendorCommand(session.VendorAnthropic, []string{"a", "claude"}, "Chat with the Anthropic API"),
			a.vendorCommand(session.VendorVertex, []string{"v", "gemini"}, "Chat with Gemini on Vertex AI or the Gemini API"),
			a.vendorCommand(session.VendorOllama, nil, "Chat with a local Ollama server"),
			a.sessionsCommand(),
			a.tokensCommand(),
		},
		global: a.globalFlags,
		before: a.setup,
		stderr: a.stderr,
	}
}
