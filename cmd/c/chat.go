package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/model"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
)

// chatFlags are the options of a vendor command.
type chatFlags struct {
	session            string
	model              string
	system             string
	maxTokens          int
	maxSupportedTokens int
	minAvailableTokens int
	temperature        float64
	topP               float64
	topK               int
	stop               []string
	pin                bool
	stream             bool
	silent             bool
	nosave             bool
	format             string
	timeout            time.Duration

	fs *pflag.FlagSet
}

func (f *chatFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.session, "session", "", "session name; omitted means a new anonymous session")
	fs.StringVarP(&f.model, "model", "m", "", "model id")
	fs.StringVar(&f.system, "system", "", "system prompt")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "maximum tokens to generate")
	fs.IntVar(&f.maxSupportedTokens, "max-supported-tokens", 0, "context window of the model (default from the model name)")
	fs.IntVar(&f.minAvailableTokens, "min-available-tokens", 0, "tokens always left for the reply (default 1000)")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature")
	fs.Float64Var(&f.topP, "top-p", 0, "nucleus sampling mass")
	fs.IntVar(&f.topK, "top-k", 0, "sample from the top K tokens")
	fs.StringArrayVar(&f.stop, "stop", nil, "stop sequence (repeatable)")
	fs.BoolVar(&f.pin, "pin", false, "pin the prompt so trimming never drops it")
	fs.BoolVar(&f.stream, "stream", false, "print the reply as it arrives")
	fs.BoolVarP(&f.silent, "silent", "s", false, "do not print the reply")
	fs.BoolVar(&f.nosave, "nosave", false, "do not save the exchange")
	fs.StringVarP(&f.format, "format", "f", string(formatRaw), "output format: raw, json or yaml")
	fs.DurationVar(&f.timeout, "timeout", 0, "vendor call timeout (default from config)")
	f.fs = fs
}

// overrides returns the session options set on the command line.
func (f *chatFlags) overrides() map[string]any {
	out := make(map[string]any)
	set := func(flag, key string, v any) {
		if f.fs.Changed(flag) {
			out[key] = v
		}
	}
	set("model", provider.OptModel, f.model)
	set("system", provider.OptSystem, f.system)
	set("max-tokens", provider.OptMaxTokens, f.maxTokens)
	set("min-available-tokens", provider.OptMinAvailableTokens, f.minAvailableTokens)
	set("temperature", provider.OptTemperature, f.temperature)
	set("top-p", provider.OptTopP, f.topP)
	set("top-k", provider.OptTopK, f.topK)
	set("stop", provider.OptStop, f.stop)
	return out
}

func (a *app) vendorCommand(vendor session.Vendor, aliases []string, summary string) *command {
	var flags chatFlags
	return &command{
		Name:    string(vendor),
		Aliases: aliases,
		Summary: summary,
		Usage:   "c " + string(vendor) + " [prompt | -] [flags]",
		Flags:   flags.register,
		Run: func(ctx context.Context, args []string) error {
			return a.chat(ctx, vendor, &flags, args)
		},
	}
}

func (a *app) chat(ctx context.Context, vendor session.Vendor, flags *chatFlags, args []string) error {
	out, err := parseFormat(flags.format)
	if err != nil {
		return err
	}
	prompt, err := a.prompt(args)
	if err != nil {
		return err
	}

	vcfg := a.cfg.Vendor(vendor)
	sess, err := a.openSession(vendor, vcfg, flags)
	if err != nil {
		return err
	}
	sess.Merge(flags.overrides())

	adapter, err := provider.New(ctx, vendor, vcfg)
	if err != nil {
		return err
	}

	opts := provider.TurnOptions{
		Pin:     flags.pin,
		Stream:  flags.stream,
		Timeout: vcfg.Timeout,
	}
	if flags.fs.Changed("timeout") {
		opts.Timeout = flags.timeout
	}
	streaming := flags.stream && !flags.silent && out == formatRaw && adapter.Capabilities().Streaming
	if streaming {
		opts.OnChunk = func(s string) { fmt.Fprint(a.stdout, s) }
	}

	res, err := provider.Turn(ctx, adapter, sess, prompt, a.tokenCounter(), opts)
	if err != nil {
		return err
	}

	usage := res.Reply.Usage
	modelName := res.Reply.Model
	if modelName == "" {
		modelName = provider.Options(sess.Options).GetString(provider.OptModel, vcfg.Model)
	}
	a.costs.Record(modelName, usage.InputTokens, usage.OutputTokens)
	slog.Info("usage",
		slog.String("model", modelName),
		slog.Int("window", len(res.Window)),
		slog.Int("overhead", res.Overhead),
		slog.Float64("estimated_cost_usd", a.costs.EstimatedCost()))

	if !flags.silent {
		if err := a.printReply(out, streaming, sess, res); err != nil {
			return err
		}
	}

	if flags.nosave {
		return nil
	}
	return a.store.Save(sess)
}

// prompt resolves the prompt from the arguments or stdin. "-" forces
// stdin; no arguments reads stdin when it is piped.
func (a *app) prompt(args []string) (string, error) {
	var prompt string
	switch {
	case len(args) == 1 && args[0] == "-":
		p, err := a.readStdin()
		if err != nil {
			return "", err
		}
		prompt = p
	case len(args) > 0:
		prompt = strings.TrimSpace(strings.Join(args, " "))
	case a.stdinPiped():
		p, err := a.readStdin()
		if err != nil {
			return "", err
		}
		prompt = p
	}
	if prompt == "" {
		return "", usagef("a prompt is required: pass it as an argument or pipe it on stdin")
	}
	return prompt, nil
}

// openSession loads the named session or starts a new one seeded from the
// vendor config.
func (a *app) openSession(vendor session.Vendor, vcfg provider.Config, flags *chatFlags) (*session.Session, error) {
	if flags.session != "" && a.store.Exists(flags.session) {
		sess, err := a.store.Load(flags.session)
		if err != nil {
			return nil, err
		}
		if sess.Vendor != vendor {
			return nil, usagef("session %q belongs to %s, not %s", sess.ID, sess.Vendor, vendor)
		}
		if flags.fs.Changed("max-supported-tokens") {
			sess.MaxSupportedTokens = flags.maxSupportedTokens
		}
		return sess, nil
	}

	modelName := vcfg.Model
	if flags.fs.Changed("model") {
		modelName = flags.model
	}
	limit := vcfg.MaxSupportedTokens
	switch {
	case flags.fs.Changed("max-supported-tokens"):
		limit = flags.maxSupportedTokens
	case limit == 0:
		limit = model.ContextWindow(modelName)
	}

	var sess *session.Session
	if flags.session != "" {
		sess = session.New(flags.session, vendor, limit)
		if _, err := a.store.Path(sess.ID); err != nil {
			return nil, err
		}
	} else {
		var err error
		sess, err = a.store.NewAnonymous(vendor, limit)
		if err != nil {
			return nil, err
		}
	}
	sess.Merge(vcfg.SessionOptions())

	slog.Debug("new session",
		slog.String("id", sess.ID),
		slog.String("model", modelName),
		slog.Int("max_supported_tokens", limit))
	return sess, nil
}

func (a *app) printReply(out format, streamed bool, sess *session.Session, res *provider.Result) error {
	if out == formatRaw {
		if streamed {
			_, err := fmt.Fprintln(a.stdout)
			return err
		}
		_, err := fmt.Fprintln(a.stdout, res.Reply.Content)
		return err
	}

	last := sess.History[len(sess.History)-1]
	return encode(a.stdout, out, reply{
		Content: res.Reply.Content,
		Role:    history.RoleAssistant,
		Pin:     last.Pin,
		Model:   res.Reply.Model,
		Session: sess.ID,
		Window:  len(res.Window),
		Usage:   res.Reply.Usage,
	})
}
