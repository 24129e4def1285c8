// Package chatkit keeps chat conversations with language model APIs inside
// the model's context window.
//
// Each subpackage can be used independently:
//
//   - bpe: Byte-level BPE tokenizer (GPT-2 encoder.json + vocab.bpe)
//   - tokens: Token counting and reply budgets
//   - history: Messages and trimming a history to a token budget
//   - session: Named conversations stored as YAML files
//   - provider: Vendor adapter interface, registry and the Turn loop
//   - openai, anthropic, vertex, ollama: Vendor adapters
//   - config: TOML config file, .env and environment overrides
//   - model: Context windows and cost tracking per model family
//   - truncate: Token-aware previews of message content
//
// The c command in cmd/c wires them into a terminal client.
//
// # Quick Start
//
// Token counting:
//
//	import "github.com/randalmurphal/chatkit/tokens"
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, World!")
//
// Trimming a history:
//
//	import "github.com/randalmurphal/chatkit/history"
//	window, err := history.Trim(messages, prompt, overhead, 4096, counter)
//
// One exchange with a vendor:
//
//	import (
//		"github.com/randalmurphal/chatkit/provider"
//		"github.com/randalmurphal/chatkit/session"
//		_ "github.com/randalmurphal/chatkit/openai"
//	)
//	adapter, _ := provider.New(ctx, session.VendorOpenAI, cfg)
//	sess := session.New("demo", session.VendorOpenAI, 128000)
//	res, err := provider.Turn(ctx, adapter, sess, "Hello", counter, provider.TurnOptions{})
package chatkit
