package provider

import (
	"context"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// Adapter connects the core to one vendor API.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Vendor returns the vendor this adapter talks to.
	Vendor() session.Vendor

	// RoleFor maps a history role to the vendor's role name.
	RoleFor(role history.Role) string

	// Overhead estimates the tokens a request spends outside of message
	// content: the system prompt plus fixed framing.
	Overhead(system string, counter tokens.Counter) int

	// BuildRequest converts an exchange into the vendor request.
	BuildRequest(ex Exchange) (any, error)

	// ParseResponse extracts the reply from a vendor response.
	ParseResponse(resp any) (Reply, error)

	// Send performs a blocking call.
	Send(ctx context.Context, req any) (any, error)

	// Stream performs a streaming call, invoking onChunk for each text delta,
	// and returns the accumulated response.
	Stream(ctx context.Context, req any, onChunk func(string)) (any, error)

	// Capabilities reports optional features of the vendor.
	Capabilities() Capabilities
}

// Capabilities describes what a vendor supports.
type Capabilities struct {
	// Streaming indicates the vendor supports streamed replies.
	Streaming bool `json:"streaming"`

	// TopK indicates the vendor honors the top_k sampling option.
	TopK bool `json:"top_k"`

	// StopSequences indicates the vendor honors stop sequences.
	StopSequences bool `json:"stop_sequences"`
}

// Pre-defined capability sets for the bundled vendors.
var (
	OpenAICapabilities = Capabilities{
		Streaming:     true,
		TopK:          false,
		StopSequences: true,
	}

	AnthropicCapabilities = Capabilities{
		Streaming:     true,
		TopK:          true,
		StopSequences: true,
	}

	VertexCapabilities = Capabilities{
		Streaming:     true,
		TopK:          true,
		StopSequences: true,
	}

	OllamaCapabilities = Capabilities{
		Streaming:     true,
		TopK:          true,
		StopSequences: true,
	}
)
