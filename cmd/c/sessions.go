package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/truncate"
)

// defaultWidth is used for listings when stdout is not a terminal.
const defaultWidth = 100

func (a *app) sessionsCommand() *command {
	var (
		all, long   bool
		showFormat  string
		preview     int
		watchFormat string
	)

	return &command{
		Name:    "sessions",
		Aliases: []string{"s"},
		Summary: "Inspect and edit saved sessions",
		Subcommands: []*command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Summary: "List saved sessions",
				Flags: func(fs *pflag.FlagSet) {
					fs.BoolVarP(&all, "all", "a", false, "include anonymous sessions")
					fs.BoolVarP(&long, "long", "l", false, "show vendor, size and the newest message")
				},
				Run: func(_ context.Context, args []string) error {
					return a.sessionsList(all, long)
				},
			},
			{
				Name:    "show",
				Summary: "Print a session's history",
				Usage:   "c sessions show ID [flags]",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVarP(&showFormat, "format", "f", string(formatRaw), "output format: raw, json or yaml")
					fs.IntVarP(&preview, "preview", "p", 0, "cut each message to N tokens on one line (raw only)")
				},
				Run: func(_ context.Context, args []string) error {
					return a.sessionsShow(showFormat, preview, args)
				},
			},
			{
				Name:       "pin",
				StopAtArgs: true,
				Summary:    "Pin messages so trimming keeps them",
				Usage:      "c sessions pin ID [INDEX...]",
				Run: func(_ context.Context, args []string) error {
					return a.sessionsPin(true, args)
				},
			},
			{
				Name:       "unpin",
				StopAtArgs: true,
				Summary:    "Unpin messages",
				Usage:      "c sessions unpin ID [INDEX...]",
				Run: func(_ context.Context, args []string) error {
					return a.sessionsPin(false, args)
				},
			},
			{
				Name:    "rm",
				Summary: "Delete sessions",
				Usage:   "c sessions rm ID...",
				Run: func(_ context.Context, args []string) error {
					return a.sessionsRemove(args)
				},
			},
			{
				Name:    "watch",
				Summary: "Print messages as they are added to a session",
				Usage:   "c sessions watch ID [flags]",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVarP(&watchFormat, "format", "f", string(formatRaw), "output format: raw, json or yaml")
				},
				Run: func(ctx context.Context, args []string) error {
					return a.sessionsWatch(ctx, watchFormat, args)
				},
			},
			{
				Name:    "schema",
				Summary: "Print the JSON Schema of session files",
				Run: func(_ context.Context, _ []string) error {
					return a.sessionsSchema()
				},
			},
		},
	}
}

func (a *app) sessionsList(all, long bool) error {
	ids, err := a.store.List(all)
	if err != nil {
		return err
	}
	if !long {
		for _, id := range ids {
			fmt.Fprintln(a.stdout, id)
		}
		return nil
	}

	width := a.width()
	if width == 0 {
		width = defaultWidth
	}

	tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVENDOR\tMESSAGES\tPINNED\tLAST")
	for _, id := range ids {
		sess, err := a.store.Load(id)
		if err != nil {
			return err
		}
		last := ""
		if n := len(sess.History); n > 0 {
			last = truncate.Flatten(sess.History[n-1].Content)
		}
		// The fixed columns take roughly half the line.
		last = truncate.Width(last, max(width/2, 20))
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", id, sess.Vendor, len(sess.History), sess.Pinned(), last)
	}
	return tw.Flush()
}

func (a *app) sessionsShow(f string, preview int, args []string) error {
	out, err := parseFormat(f)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usagef("sessions show takes exactly one session id")
	}
	sess, err := a.store.Load(args[0])
	if err != nil {
		return err
	}

	if out != formatRaw {
		return encode(a.stdout, out, sess)
	}

	fmt.Fprintf(a.stdout, "%s  %s  max_supported_tokens=%d  messages=%d  pinned=%d\n",
		sess.ID, sess.Vendor, sess.MaxSupportedTokens, len(sess.History), sess.Pinned())
	for i, m := range sess.History {
		content := m.Content
		if preview > 0 {
			content = truncate.Preview(content, preview, a.tokenCounter())
		}
		fmt.Fprintf(a.stdout, "[%d] %s%s: %s\n", i, m.Role, pinMark(m), content)
	}
	return nil
}

func pinMark(m history.Message) string {
	if m.Pin {
		return " (pinned)"
	}
	return ""
}

func (a *app) sessionsPin(pin bool, args []string) error {
	if len(args) == 0 {
		return usagef("a session id is required")
	}
	sess, err := a.store.Load(args[0])
	if err != nil {
		return err
	}

	indexes := args[1:]
	if len(indexes) == 0 {
		indexes = []string{"-1"}
	}
	for _, s := range indexes {
		i, err := strconv.Atoi(s)
		if err != nil {
			return usagef("invalid message index %q", s)
		}
		if err := sess.SetPin(i, pin); err != nil {
			return usagef("%v", err)
		}
	}
	return a.store.Save(sess)
}

func (a *app) sessionsRemove(ids []string) error {
	if len(ids) == 0 {
		return usagef("at least one session id is required")
	}
	for _, id := range ids {
		if err := a.store.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) sessionsWatch(ctx context.Context, f string, args []string) error {
	out, err := parseFormat(f)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usagef("sessions watch takes exactly one session id")
	}
	path, err := a.store.Path(args[0])
	if err != nil {
		return err
	}

	seen := 0
	for sess := range session.Watch(ctx, path) {
		// A shorter history means the file was rewritten; start over.
		if len(sess.History) < seen {
			seen = 0
		}
		for i, m := range sess.History[seen:] {
			if out != formatRaw {
				if err := encode(a.stdout, out, m); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(a.stdout, "[%d] %s%s: %s\n", seen+i, m.Role, pinMark(m), m.Content)
		}
		seen = len(sess.History)
	}
	return nil
}

func (a *app) sessionsSchema() error {
	r := &jsonschema.Reflector{
		// Options hold arbitrary vendor settings.
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&session.Session{})
	schema.Title = "chatkit session"
	return encode(a.stdout, formatJSON, schema)
}
