package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// DefaultModel is used when neither the session nor the config names one.
const DefaultModel = openai.ChatModelGPT4o

// framingTokens approximates the per-request priming tokens of the chat
// format.
const framingTokens = 3

func init() {
	provider.Register(session.VendorOpenAI, func(_ context.Context, cfg provider.Config) (provider.Adapter, error) {
		return New(cfg), nil
	})
}

// Adapter implements provider.Adapter for OpenAI.
type Adapter struct {
	client       openai.Client
	defaultModel shared.ChatModel
}

// New creates an adapter. The API key falls back to OPENAI_API_KEY inside
// the SDK when cfg.APIKey is empty.
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
		model = shared.ChatModel(cfg.Model)
	}

	return &Adapter{
		client:       openai.NewClient(opts...),
		defaultModel: model,
	}
}

// Vendor returns session.VendorOpenAI.
func (a *Adapter) Vendor() session.Vendor {
	return session.VendorOpenAI
}

// Capabilities returns provider.OpenAICapabilities.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.OpenAICapabilities
}

// RoleFor maps history roles to chat roles.
func (a *Adapter) RoleFor(role history.Role) string {
	if role == history.RoleAssistant {
		return "assistant"
	}
	return "user"
}

// Overhead counts the system prompt plus the chat format's framing.
func (a *Adapter) Overhead(system string, counter tokens.Counter) int {
	return framingTokens + counter.Count(system)
}

// BuildRequest returns *openai.ChatCompletionNewParams.
func (a *Adapter) BuildRequest(ex provider.Exchange) (any, error) {
	return a.BuildRequestTyped(ex), nil
}

// BuildRequestTyped returns the concrete type so callers avoid type assertion.
func (a *Adapter) BuildRequestTyped(ex provider.Exchange) *openai.ChatCompletionNewParams {
	p := ex.Params
	params := &openai.ChatCompletionNewParams{
		Model:    a.defaultModel,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(ex.Window)+2),
	}
	if p.Model != "" {
		params.Model = shared.ChatModel(p.Model)
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxTokens))
	}
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = openai.Float(*p.TopP)
	}
	if p.TopK != nil {
		slog.Debug("openai ignores top_k", slog.Int("top_k", *p.TopK))
	}
	if len(p.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: p.Stop}
	}

	if p.System != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(p.System))
	}
	for _, m := range ex.Window {
		params.Messages = append(params.Messages, message(m.Role, m.Content))
	}
	params.Messages = append(params.Messages, openai.UserMessage(ex.Prompt))

	return params
}

func message(role history.Role, content string) openai.ChatCompletionMessageParamUnion {
	if role == history.RoleAssistant {
		return openai.AssistantMessage(content)
	}
	return openai.UserMessage(content)
}

// ParseResponse converts *openai.ChatCompletion into a reply.
func (a *Adapter) ParseResponse(resp any) (provider.Reply, error) {
	completion, ok := resp.(*openai.ChatCompletion)
	if !ok {
		return provider.Reply{}, fmt.Errorf("%w: want *openai.ChatCompletion, got %T", provider.ErrUnexpectedType, resp)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return provider.Reply{}, provider.NewError("openai", "parse", provider.ErrEmptyResponse, false)
	}

	choice := completion.Choices[0]
	return provider.Reply{
		Content:      choice.Message.Content,
		Model:        completion.Model,
		FinishReason: choice.FinishReason,
		Usage: provider.TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}, nil
}

// Send calls the chat completions endpoint.
func (a *Adapter) Send(ctx context.Context, req any) (any, error) {
	params, err := requestParams(req)
	if err != nil {
		return nil, err
	}

	completion, err := a.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return nil, wrapError("send", err)
	}
	return completion, nil
}

// Stream calls the chat completions endpoint with streaming and returns
// the accumulated completion.
func (a *Adapter) Stream(ctx context.Context, req any, onChunk func(string)) (any, error) {
	params, err := requestParams(req)
	if err != nil {
		return nil, err
	}
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

	stream := a.client.Chat.Completions.NewStreaming(ctx, *params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			onChunk(chunk.Choices[0].Delta.Content)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, wrapError("stream", err)
	}
	return &acc.ChatCompletion, nil
}

func requestParams(req any) (*openai.ChatCompletionNewParams, error) {
	params, ok := req.(*openai.ChatCompletionNewParams)
	if !ok {
		return nil, fmt.Errorf("%w: want *openai.ChatCompletionNewParams, got %T", provider.ErrUnexpectedType, req)
	}
	return params, nil
}

func wrapError(op string, err error) error {
	if ctxErr := provider.ContextError("openai", op, err); ctxErr != nil {
		return ctxErr
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return provider.StatusError("openai", op, apiErr.StatusCode, err)
	}
	return provider.NewError("openai", op, fmt.Errorf("%w: %w", provider.ErrUnavailable, err), true)
}

var _ provider.Adapter = (*Adapter)(nil)
