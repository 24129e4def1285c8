// Package model knows the model families served by the supported vendors.
//
// It answers two questions the CLI asks about a model name: how large its
// context window is, which seeds a new session's max_supported_tokens, and
// roughly what a conversation has cost so far.
//
// # Context Windows
//
//	limit := model.ContextWindow("gpt-4o-2024-08-06") // 128000
//
// Unknown names fall back to DefaultContextWindow.
//
// # Cost Tracking
//
//	tracker := model.NewCostTracker()
//	tracker.Record("claude-sonnet-4-5", 1000, 500) // input, output tokens
//	cost := tracker.EstimatedCost()
package model
