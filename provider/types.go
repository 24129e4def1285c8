package provider

import (
	"time"

	"github.com/randalmurphal/chatkit/history"
)

// Exchange is everything an adapter needs to build one request.
type Exchange struct {
	// Window is the trimmed history, oldest first.
	Window []history.Message `json:"window"`

	// Prompt is the new user message.
	Prompt string `json:"prompt"`

	// Params are the request settings.
	Params Params `json:"params"`
}

// Params are the typed request settings built from session options.
type Params struct {
	Model       string   `json:"model,omitempty"`
	System      string   `json:"system,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Reply is the vendor's answer to one turn.
type Reply struct {
	// Content is the text response from the model.
	Content string `json:"content"`

	// Model is the model that answered (may differ from requested).
	Model string `json:"model,omitempty"`

	// FinishReason indicates why the model stopped generating.
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage tracks token consumption for this request.
	Usage TokenUsage `json:"usage"`

	// Duration is the time taken for the call.
	Duration time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int `json:"total_tokens" yaml:"total_tokens"`

	// Cache-related tokens (vendor-specific, may be zero)
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty" yaml:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty" yaml:"cache_read_input_tokens,omitempty"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}
