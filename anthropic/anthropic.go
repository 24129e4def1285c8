package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// DefaultModel is used when neither the session nor the config names one.
const DefaultModel = anthropic.ModelClaudeSonnet4_5_20250929

// DefaultMaxTokens fills the required max_tokens field when no limit is set.
const DefaultMaxTokens int64 = 1024

// framingTokens approximates the role markers wrapped around each request.
const framingTokens = 5

func init() {
	provider.Register(session.VendorAnthropic, func(_ context.Context, cfg provider.Config) (provider.Adapter, error) {
		return New(cfg), nil
	})
}

// Adapter implements provider.Adapter for Anthropic.
type Adapter struct {
	client       anthropic.Client
	defaultModel anthropic.Model
}

// New creates an adapter. The API key falls back to ANTHROPIC_API_KEY
// inside the SDK when cfg.APIKey is empty.
func New(cfg provider.Config) *Adapter {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}

	return &Adapter{
		client:       anthropic.NewClient(opts...),
		defaultModel: model,
	}
}

// Vendor returns session.VendorAnthropic.
func (a *Adapter) Vendor() session.Vendor {
	return session.VendorAnthropic
}

// Capabilities returns provider.AnthropicCapabilities.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.AnthropicCapabilities
}

// RoleFor maps history roles to message roles.
func (a *Adapter) RoleFor(role history.Role) string {
	if role == history.RoleAssistant {
		return string(anthropic.MessageParamRoleAssistant)
	}
	return string(anthropic.MessageParamRoleUser)
}

// Overhead counts the system prompt plus the role framing.
func (a *Adapter) Overhead(system string, counter tokens.Counter) int {
	return framingTokens + counter.Count(system)
}

// BuildRequest returns *anthropic.MessageNewParams.
func (a *Adapter) BuildRequest(ex provider.Exchange) (any, error) {
	return a.BuildRequestTyped(ex), nil
}

// BuildRequestTyped returns the concrete type so callers avoid type assertion.
func (a *Adapter) BuildRequestTyped(ex provider.Exchange) *anthropic.MessageNewParams {
	p := ex.Params
	params := &anthropic.MessageNewParams{
		MaxTokens: DefaultMaxTokens,
		Model:     a.defaultModel,
	}
	if p.Model != "" {
		params.Model = anthropic.Model(p.Model)
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = int64(p.MaxTokens)
	}
	if p.Temperature != nil {
		params.Temperature = anthropic.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = anthropic.Float(*p.TopP)
	}
	if p.TopK != nil {
		params.TopK = anthropic.Int(int64(*p.TopK))
	}
	if len(p.Stop) > 0 {
		params.StopSequences = p.Stop
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	turns := make([]history.Message, 0, len(ex.Window)+1)
	turns = append(turns, ex.Window...)
	turns = append(turns, history.Human(ex.Prompt))
	for _, t := range alternate(turns) {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == history.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	return params
}

// alternate joins runs of same-role messages with a blank line and drops
// assistant messages ahead of the first human one, since a conversation
// must open with a user turn.
func alternate(messages []history.Message) []history.Message {
	lead := 0
	for lead < len(messages) && messages[lead].Role == history.RoleAssistant {
		lead++
	}
	if lead > 0 {
		slog.Debug("anthropic dropped leading assistant messages", slog.Int("dropped", lead))
		messages = messages[lead:]
	}

	out := make([]history.Message, 0, len(messages))
	for _, m := range messages {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, history.NewMessage(m.Role, m.Content))
	}
	if len(out) < len(messages) {
		slog.Debug("anthropic joined same-role messages",
			slog.Int("messages", len(messages)),
			slog.Int("turns", len(out)))
	}
	return out
}

// ParseResponse converts *anthropic.Message into a reply.
func (a *Adapter) ParseResponse(resp any) (provider.Reply, error) {
	msg, ok := resp.(*anthropic.Message)
	if !ok {
		return provider.Reply{}, fmt.Errorf("%w: want *anthropic.Message, got %T", provider.ErrUnexpectedType, resp)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return provider.Reply{}, provider.NewError("anthropic", "parse", provider.ErrEmptyResponse, false)
	}

	usage := provider.TokenUsage{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens

	return provider.Reply{
		Content:      text.String(),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage:        usage,
	}, nil
}

// Send calls the messages endpoint.
func (a *Adapter) Send(ctx context.Context, req any) (any, error) {
	params, err := requestParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := a.client.Messages.New(ctx, *params)
	if err != nil {
		return nil, wrapError("send", err)
	}
	return msg, nil
}

// Stream calls the messages endpoint with streaming and returns the
// accumulated message.
func (a *Adapter) Stream(ctx context.Context, req any, onChunk func(string)) (any, error) {
	params, err := requestParams(req)
	if err != nil {
		return nil, err
	}

	stream := a.client.Messages.NewStreaming(ctx, *params)
	defer stream.Close()

	msg := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return nil, provider.NewError("anthropic", "stream", err, false)
		}
		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				onChunk(delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, wrapError("stream", err)
	}
	return &msg, nil
}

func requestParams(req any) (*anthropic.MessageNewParams, error) {
	params, ok := req.(*anthropic.MessageNewParams)
	if !ok {
		return nil, fmt.Errorf("%w: want *anthropic.MessageNewParams, got %T", provider.ErrUnexpectedType, req)
	}
	return params, nil
}

func wrapError(op string, err error) error {
	if ctxErr := provider.ContextError("anthropic", op, err); ctxErr != nil {
		return ctxErr
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return provider.StatusError("anthropic", op, apiErr.StatusCode, err)
	}
	return provider.NewError("anthropic", op, fmt.Errorf("%w: %w", provider.ErrUnavailable, err), true)
}

var _ provider.Adapter = (*Adapter)(nil)
