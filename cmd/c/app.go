package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/randalmurphal/chatkit/config"
	"github.com/randalmurphal/chatkit/model"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Global flags.
	configPath string
	verbose    int

	cfg     *config.Config
	store   *session.Store
	counter tokens.Counter
	costs   *model.CostTracker
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		costs:  model.NewCostTracker(),
	}
}

func (a *app) globalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&a.configPath, "config", "", "config file (default $C_ROOT/.c/config.toml)")
	fs.CountVarP(&a.verbose, "verbose", "v", "log more; repeat for debug output")
}

// setup loads the configuration and installs the logger. It runs once the
// selected command's flags are parsed.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	switch {
	case a.verbose >= 2:
		level = slog.LevelDebug
	case a.verbose == 1:
		level = min(level, slog.LevelInfo)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))

	a.store, err = session.NewStore(cfg.Root)
	if err != nil {
		return err
	}
	return nil
}

// tokenCounter builds the counter lazily; loading a vocabulary is only
// worth it for commands that count.
func (a *app) tokenCounter() tokens.Counter {
	if a.counter == nil {
		a.counter = a.cfg.Tokenizer.Counter()
	}
	return a.counter
}

// stdinPiped reports whether stdin is something other than a terminal.
func (a *app) stdinPiped() bool {
	f, ok := a.stdin.(*os.File)
	if !ok {
		return true
	}
	return !term.IsTerminal(int(f.Fd()))
}

// readStdin returns all of stdin with surrounding whitespace trimmed.
func (a *app) readStdin() (string, error) {
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// width returns the terminal width of stdout, or 0 when stdout is not a
// terminal.
func (a *app) width() int {
	f, ok := a.stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
