package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/chatkit/bpe"
	"github.com/randalmurphal/chatkit/tokens"
)

// fileCount is the token count of one input.
type fileCount struct {
	Path   string `json:"path" yaml:"path"`
	Tokens int    `json:"tokens" yaml:"tokens"`
}

func (a *app) tokensCommand() *command {
	var countFormat, encodeFormat string
	formatFlag := func(dst *string) func(fs *pflag.FlagSet) {
		return func(fs *pflag.FlagSet) {
			fs.StringVarP(dst, "format", "f", string(formatRaw), "output format: raw, json or yaml")
		}
	}

	return &command{
		Name:    "tokens",
		Summary: "Count, encode and decode BPE tokens",
		Subcommands: []*command{
			{
				Name:    "count",
				Summary: "Count the tokens of files or stdin",
				Usage:   "c tokens count [FILE | -]... [flags]",
				Flags:   formatFlag(&countFormat),
				Run: func(ctx context.Context, args []string) error {
					return a.tokensCount(ctx, countFormat, args)
				},
			},
			{
				Name:    "encode",
				Summary: "Print the token ids of text",
				Usage:   "c tokens encode [TEXT | -] [flags]",
				Flags:   formatFlag(&encodeFormat),
				Run: func(_ context.Context, args []string) error {
					return a.tokensEncode(encodeFormat, args)
				},
			},
			{
				Name:    "decode",
				Summary: "Print the text of token ids",
				Usage:   "c tokens decode [ID... | -]",
				Run: func(_ context.Context, args []string) error {
					return a.tokensDecode(args)
				},
			},
		},
	}
}

func (a *app) tokensCount(ctx context.Context, f string, paths []string) error {
	out, err := parseFormat(f)
	if err != nil {
		return err
	}
	counter := a.tokenCounter()

	if len(paths) == 0 || (len(paths) == 1 && paths[0] == "-") {
		text, err := a.readStdin()
		if err != nil {
			return err
		}
		n := counter.Count(text)
		if out == formatRaw {
			_, err := fmt.Fprintln(a.stdout, n)
			return err
		}
		return encode(a.stdout, out, fileCount{Path: "-", Tokens: n})
	}

	counts := make([]fileCount, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			counts[i] = fileCount{Path: path, Tokens: counter.Count(string(data))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if out != formatRaw {
		return encode(a.stdout, out, counts)
	}
	total := 0
	for _, c := range counts {
		total += c.Tokens
		fmt.Fprintf(a.stdout, "%d\t%s\n", c.Tokens, c.Path)
	}
	if len(counts) > 1 {
		fmt.Fprintf(a.stdout, "%d\ttotal\n", total)
	}
	return nil
}

// encoder returns the configured BPE encoder. Unlike counting, encoding has
// no estimate to fall back on.
func (a *app) encoder() (*bpe.Encoder, error) {
	if c, ok := a.tokenCounter().(*tokens.BPECounter); ok {
		return c.Encoder(), nil
	}
	if a.cfg.Tokenizer.EncoderPath == "" {
		return nil, usagef("no tokenizer configured: set tokenizer.encoder and tokenizer.merges in config.toml or C_TOKENIZER_ENCODER and C_TOKENIZER_MERGES")
	}
	return a.cfg.Tokenizer.NewEncoder()
}

func (a *app) tokensEncode(f string, args []string) error {
	out, err := parseFormat(f)
	if err != nil {
		return err
	}
	enc, err := a.encoder()
	if err != nil {
		return err
	}

	var text string
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if text, err = a.readStdin(); err != nil {
			return err
		}
	} else {
		text = strings.Join(args, " ")
	}

	ids, err := enc.Encode(text)
	if err != nil {
		return err
	}
	if out != formatRaw {
		return encode(a.stdout, out, ids)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	_, err = fmt.Fprintln(a.stdout, strings.Join(parts, " "))
	return err
}

func (a *app) tokensDecode(args []string) error {
	enc, err := a.encoder()
	if err != nil {
		return err
	}

	fields := args
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		text, err := a.readStdin()
		if err != nil {
			return err
		}
		fields = strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '[' || r == ']'
		})
	}

	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(strings.Trim(f, ","))
		if err != nil {
			return usagef("invalid token id %q", f)
		}
		ids = append(ids, id)
	}

	text, err := enc.Decode(ids)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, text)
	return err
}
