package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
)

// format selects how results are printed.
type format string

const (
	formatRaw  format = "raw"
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(s); f {
	case formatRaw, formatJSON, formatYAML:
		return f, nil
	}
	return "", usagef("unknown format %q (want raw, json or yaml)", s)
}

// reply is the structured form of an answer.
type reply struct {
	Content string              `json:"content" yaml:"content"`
	Role    history.Role        `json:"role" yaml:"role"`
	Pin     bool                `json:"pin" yaml:"pin"`
	Model   string              `json:"model,omitempty" yaml:"model,omitempty"`
	Session string              `json:"session" yaml:"session"`
	Window  int                 `json:"window" yaml:"window"`
	Usage   provider.TokenUsage `json:"usage" yaml:"usage"`
}

// encode writes v as JSON or YAML. Raw falls back to JSON for values that
// have no plain text form.
func encode(w io.Writer, f format, v any) error {
	if f == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
