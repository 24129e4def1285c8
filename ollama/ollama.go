package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// DefaultModel is used when neither the session nor the config names one.
const DefaultModel = "llama3.2"

const framingTokens = 4

func init() {
	provider.Register(session.VendorOllama, func(_ context.Context, cfg provider.Config) (provider.Adapter, error) {
		return New(cfg)
	})
}

// Adapter implements provider.Adapter for Ollama.
type Adapter struct {
	client       *api.Client
	defaultModel string
}

// New creates an adapter. An empty cfg.BaseURL falls back to OLLAMA_HOST
// and then to the local default.
func New(cfg provider.Config) (*Adapter, error) {
	var client *api.Client
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, provider.NewError("ollama", "connect", fmt.Errorf("%w: base url: %w", provider.ErrInvalidRequest, err), false)
		}
		client = api.NewClient(base, &http.Client{Timeout: cfg.Timeout})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, provider.NewError("ollama", "connect", err, false)
		}
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}
	return &Adapter{client: client, defaultModel: model}, nil
}

// Vendor returns session.VendorOllama.
func (a *Adapter) Vendor() session.Vendor {
	return session.VendorOllama
}

// Capabilities returns provider.OllamaCapabilities.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.OllamaCapabilities
}

// RoleFor maps history roles to chat roles.
func (a *Adapter) RoleFor(role history.Role) string {
	if role == history.RoleAssistant {
		return "assistant"
	}
	return "user"
}

// Overhead counts the system message plus the chat template framing.
func (a *Adapter) Overhead(system string, counter tokens.Counter) int {
	return framingTokens + counter.Count(system)
}

// BuildRequest returns *api.ChatRequest.
func (a *Adapter) BuildRequest(ex provider.Exchange) (any, error) {
	return a.BuildRequestTyped(ex), nil
}

// BuildRequestTyped returns the concrete type so callers avoid type
// assertion. The request is non-streaming; Stream flips the flag.
func (a *Adapter) BuildRequestTyped(ex provider.Exchange) *api.ChatRequest {
	p := ex.Params
	stream := false
	req := &api.ChatRequest{
		Model:    a.defaultModel,
		Messages: make([]api.Message, 0, len(ex.Window)+2),
		Stream:   &stream,
	}
	if p.Model != "" {
		req.Model = p.Model
	}

	opts := make(map[string]any)
	if p.MaxTokens > 0 {
		opts["num_predict"] = p.MaxTokens
	}
	if p.Temperature != nil {
		opts["temperature"] = *p.Temperature
	}
	if p.TopP != nil {
		opts["top_p"] = *p.TopP
	}
	if p.TopK != nil {
		opts["top_k"] = *p.TopK
	}
	if len(p.Stop) > 0 {
		opts["stop"] = p.Stop
	}
	if len(opts) > 0 {
		req.Options = opts
	}

	if p.System != "" {
		req.Messages = append(req.Messages, api.Message{Role: "system", Content: p.System})
	}
	for _, m := range ex.Window {
		req.Messages = append(req.Messages, api.Message{Role: a.RoleFor(m.Role), Content: m.Content})
	}
	req.Messages = append(req.Messages, api.Message{Role: "user", Content: ex.Prompt})

	return req
}

// ParseResponse converts *api.ChatResponse into a reply.
func (a *Adapter) ParseResponse(resp any) (provider.Reply, error) {
	r, ok := resp.(*api.ChatResponse)
	if !ok {
		return provider.Reply{}, fmt.Errorf("%w: want *api.ChatResponse, got %T", provider.ErrUnexpectedType, resp)
	}
	if r.Message.Content == "" {
		return provider.Reply{}, provider.NewError("ollama", "parse", provider.ErrEmptyResponse, false)
	}

	usage := provider.TokenUsage{
		InputTokens:  r.Metrics.PromptEvalCount,
		OutputTokens: r.Metrics.EvalCount,
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens

	return provider.Reply{
		Content:      r.Message.Content,
		Model:        r.Model,
		FinishReason: r.DoneReason,
		Usage:        usage,
	}, nil
}

// Send posts a non-streaming chat request.
func (a *Adapter) Send(ctx context.Context, req any) (any, error) {
	return a.chat(ctx, req, false, nil)
}

// Stream posts a streaming chat request and returns the chunks folded into
// one response.
func (a *Adapter) Stream(ctx context.Context, req any, onChunk func(string)) (any, error) {
	return a.chat(ctx, req, true, onChunk)
}

func (a *Adapter) chat(ctx context.Context, req any, stream bool, onChunk func(string)) (*api.ChatResponse, error) {
	r, ok := req.(*api.ChatRequest)
	if !ok {
		return nil, fmt.Errorf("%w: want *api.ChatRequest, got %T", provider.ErrUnexpectedType, req)
	}
	op := "send"
	if stream {
		op = "stream"
	}
	r.Stream = &stream

	var (
		final   api.ChatResponse
		content strings.Builder
	)
	err := a.client.Chat(ctx, r, func(chunk api.ChatResponse) error {
		content.WriteString(chunk.Message.Content)
		if onChunk != nil && chunk.Message.Content != "" {
			onChunk(chunk.Message.Content)
		}
		if chunk.Done {
			final = chunk
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(op, err)
	}

	final.Message.Role = "assistant"
	final.Message.Content = content.String()
	return &final, nil
}

func wrapError(op string, err error) error {
	if ctxErr := provider.ContextError("ollama", op, err); ctxErr != nil {
		return ctxErr
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return provider.StatusError("ollama", op, statusErr.StatusCode, err)
	}
	return provider.NewError("ollama", op, fmt.Errorf("%w: %w", provider.ErrUnavailable, err), true)
}

var _ provider.Adapter = (*Adapter)(nil)
