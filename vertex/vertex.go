package vertex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// DefaultModel is used when neither the session nor the config names one.
const DefaultModel = "gemini-2.5-flash"

// DefaultLocation is the Vertex AI region used when none is configured.
const DefaultLocation = "us-central1"

const framingTokens = 4

func init() {
	provider.Register(session.VendorVertex, func(ctx context.Context, cfg provider.Config) (provider.Adapter, error) {
		return New(ctx, cfg)
	})
}

// Request wraps the model, contents and config of a GenerateContent call.
type Request struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Adapter implements provider.Adapter for Gemini models.
type Adapter struct {
	client       *genai.Client
	defaultModel string
}

// New creates an adapter. A non-empty cfg.Project selects the Vertex AI
// backend and uses application default credentials.
func New(ctx context.Context, cfg provider.Config) (*Adapter, error) {
	cc := &genai.ClientConfig{}
	if cfg.Project != "" {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		if cc.Location == "" {
			cc.Location = DefaultLocation
		}
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}
	cc.HTTPOptions.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		cc.HTTPOptions.Timeout = &cfg.Timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, provider.NewError("vertex", "connect", fmt.Errorf("%w: %w", provider.ErrCredentialsNotFound, err), false)
	}

	a := newAdapter(cfg.Model)
	a.client = client
	return a, nil
}

func newAdapter(model string) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{defaultModel: model}
}

// Vendor returns session.VendorVertex.
func (a *Adapter) Vendor() session.Vendor {
	return session.VendorVertex
}

// Capabilities returns provider.VertexCapabilities.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.VertexCapabilities
}

// RoleFor maps history roles to Gemini content roles.
func (a *Adapter) RoleFor(role history.Role) string {
	if role == history.RoleAssistant {
		return string(genai.RoleModel)
	}
	return string(genai.RoleUser)
}

// Overhead counts the system instruction plus the turn framing.
func (a *Adapter) Overhead(system string, counter tokens.Counter) int {
	return framingTokens + counter.Count(system)
}

// BuildRequest returns *Request.
func (a *Adapter) BuildRequest(ex provider.Exchange) (any, error) {
	return a.BuildRequestTyped(ex), nil
}

// BuildRequestTyped returns the concrete type so callers avoid type assertion.
func (a *Adapter) BuildRequestTyped(ex provider.Exchange) *Request {
	p := ex.Params
	req := &Request{
		Model:    a.defaultModel,
		Contents: make([]*genai.Content, 0, len(ex.Window)+1),
		Config:   &genai.GenerateContentConfig{},
	}
	if p.Model != "" {
		req.Model = p.Model
	}

	cfg := req.Config
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(min(p.MaxTokens, math.MaxInt32))
	}
	if p.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*p.Temperature))
	}
	if p.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*p.TopP))
	}
	if p.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*p.TopK))
	}
	if len(p.Stop) > 0 {
		cfg.StopSequences = p.Stop
	}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	for _, m := range ex.Window {
		req.Contents = append(req.Contents, genai.NewContentFromText(m.Content, genai.Role(a.RoleFor(m.Role))))
	}
	req.Contents = append(req.Contents, genai.NewContentFromText(ex.Prompt, genai.RoleUser))

	return req
}

// ParseResponse converts *genai.GenerateContentResponse into a reply.
func (a *Adapter) ParseResponse(resp any) (provider.Reply, error) {
	r, ok := resp.(*genai.GenerateContentResponse)
	if !ok {
		return provider.Reply{}, fmt.Errorf("%w: want *genai.GenerateContentResponse, got %T", provider.ErrUnexpectedType, resp)
	}

	text, finish := candidateText(r)
	if text == "" {
		return provider.Reply{}, provider.NewError("vertex", "parse", provider.ErrEmptyResponse, false)
	}

	reply := provider.Reply{
		Content:      text,
		Model:        r.ModelVersion,
		FinishReason: finish,
	}
	if r.UsageMetadata != nil {
		reply.Usage = provider.TokenUsage{
			InputTokens:  int(r.UsageMetadata.PromptTokenCount),
			OutputTokens: int(r.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(r.UsageMetadata.TotalTokenCount),
		}
	}
	return reply, nil
}

// candidateText joins the non-thought text parts of the first candidate.
func candidateText(r *genai.GenerateContentResponse) (string, string) {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0] == nil {
		return "", ""
	}
	c := r.Candidates[0]
	if c.Content == nil {
		return "", string(c.FinishReason)
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String(), string(c.FinishReason)
}

// Send calls GenerateContent.
func (a *Adapter) Send(ctx context.Context, req any) (any, error) {
	r, err := a.request(req)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Models.GenerateContent(ctx, r.Model, r.Contents, r.Config)
	if err != nil {
		return nil, wrapError("send", err)
	}
	return resp, nil
}

// Stream calls GenerateContentStream and folds the chunks into one
// response carrying the final usage and finish reason.
func (a *Adapter) Stream(ctx context.Context, req any, onChunk func(string)) (any, error) {
	r, err := a.request(req)
	if err != nil {
		return nil, err
	}

	var (
		full   strings.Builder
		last   *genai.GenerateContentResponse
		finish genai.FinishReason
	)
	for chunk, err := range a.client.Models.GenerateContentStream(ctx, r.Model, r.Contents, r.Config) {
		if err != nil {
			return nil, wrapError("stream", err)
		}
		last = chunk
		text, reason := candidateText(chunk)
		if reason != "" {
			finish = genai.FinishReason(reason)
		}
		if text != "" {
			full.WriteString(text)
			onChunk(text)
		}
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(full.String(), genai.RoleModel),
			FinishReason: finish,
		}},
	}
	if last != nil {
		resp.ModelVersion = last.ModelVersion
		resp.UsageMetadata = last.UsageMetadata
	}
	return resp, nil
}

func (a *Adapter) request(req any) (*Request, error) {
	r, ok := req.(*Request)
	if !ok {
		return nil, fmt.Errorf("%w: want *vertex.Request, got %T", provider.ErrUnexpectedType, req)
	}
	if a.client == nil {
		return nil, provider.NewError("vertex", "send", provider.ErrCredentialsNotFound, false)
	}
	return r, nil
}

func wrapError(op string, err error) error {
	if ctxErr := provider.ContextError("vertex", op, err); ctxErr != nil {
		return ctxErr
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.StatusError("vertex", op, apiErr.Code, err)
	}
	return provider.NewError("vertex", op, fmt.Errorf("%w: %w", provider.ErrUnavailable, err), true)
}

var _ provider.Adapter = (*Adapter)(nil)
