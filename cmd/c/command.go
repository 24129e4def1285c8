package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is a node of the CLI tree.
type command struct {
	// Name is typed by the user; Aliases are accepted in its place.
	Name    string
	Aliases []string

	// Summary is shown in the parent's command listing.
	Summary string

	// Usage replaces the synthesized usage line when set.
	Usage string

	// Flags registers the command's flags. Nil means none beyond the
	// global ones.
	Flags func(fs *pflag.FlagSet)

	// StopAtArgs ends flag parsing at the first positional argument, so
	// later arguments such as negative indexes may start with a dash.
	StopAtArgs bool

	// Subcommands are dispatched by the first positional argument.
	Subcommands []*command

	// Run executes the command with the positional arguments left after
	// flag parsing.
	Run func(ctx context.Context, args []string) error

	// global registers flags every leaf command accepts.
	global func(fs *pflag.FlagSet)
	// before runs after a leaf's flags are parsed and before Run.
	before func() error

	parent *command
	stderr io.Writer
}

// usageError marks a command line the user has to fix.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func (c *command) matches(name string) bool {
	return c.Name == name || slices.Contains(c.Aliases, name)
}

// Execute dispatches args down the tree and runs the selected command.
func (c *command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && c.isHelpArg(args[0]) {
		c.printHelp()
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.matches(args[0]) {
				sub.parent = c
				sub.stderr = c.stderr
				sub.global = c.global
				sub.before = c.before
				return sub.Execute(ctx, args[1:])
			}
		}
		return usagef("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}

	if c.Run == nil {
		c.printHelp()
		return usagef("%s: subcommand required", c.fullName())
	}

	fs := c.flagSet()
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(!c.StopAtArgs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.printHelp()
			return nil
		}
		return usagef("%v\n\nRun '%s --help' for usage.", err, c.fullName())
	}

	if c.before != nil {
		if err := c.before(); err != nil {
			return err
		}
	}
	return c.Run(ctx, fs.Args())
}

func (c *command) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
	if c.global != nil {
		c.global(fs)
	}
	if c.Flags != nil {
		c.Flags(fs)
	}
	return fs
}

func (c *command) printHelp() {
	w := c.stderr
	if w == nil {
		w = io.Discard
	}
	name := c.fullName()

	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			label := sub.Name
			if len(sub.Aliases) > 0 {
				label += " (" + strings.Join(sub.Aliases, ", ") + ")"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", label, sub.Summary)
		}
		tw.Flush()
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
		return
	}

	var flags strings.Builder
	fs := c.flagSet()
	fs.SetOutput(&flags)
	fs.PrintDefaults()
	if flags.Len() > 0 {
		fmt.Fprintf(w, "\nFlags:\n%s", flags.String())
	}
}

func (c *command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// isHelpArg reports whether arg asks for help. A bare "help" only counts
// for group commands so prompts may begin with the word.
func (c *command) isHelpArg(arg string) bool {
	return arg == "-h" || arg == "--help" || (arg == "help" && len(c.Subcommands) > 0)
}
