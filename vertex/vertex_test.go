package vertex

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

func ptr[T any](v T) *T { return &v }

func TestRegistered(t *testing.T) {
	assert.True(t, provider.IsRegistered(session.VendorVertex))

	a, err := provider.New(context.Background(), session.VendorVertex, provider.Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, session.VendorVertex, a.Vendor())
}

func TestRoleFor(t *testing.T) {
	a := newAdapter("")
	assert.Equal(t, "user", a.RoleFor(history.RoleHuman))
	assert.Equal(t, "model", a.RoleFor(history.RoleAssistant))
}

func TestOverhead(t *testing.T) {
	a := newAdapter("")
	counter := tokens.CounterFunc(utf8.RuneCountInString)

	assert.Equal(t, framingTokens, a.Overhead("", counter))
	assert.Equal(t, framingTokens+5, a.Overhead("terse", counter))
}

func TestBuildRequest(t *testing.T) {
	a := newAdapter("")
	ex := provider.Exchange{
		Window: []history.Message{
			history.Human("What is Go?"),
			history.Assistant("A language."),
		},
		Prompt: "Who made it?",
		Params: provider.Params{
			System:      "Be brief.",
			MaxTokens:   256,
			Temperature: ptr(0.5),
			TopP:        ptr(0.9),
			TopK:        ptr(32),
			Stop:        []string{"END"},
		},
	}

	req := a.BuildRequestTyped(ex)

	assert.Equal(t, DefaultModel, req.Model)
	require.Len(t, req.Contents, 3)
	wantRoles := []string{"user", "model", "user"}
	wantText := []string{"What is Go?", "A language.", "Who made it?"}
	for i, c := range req.Contents {
		assert.Equal(t, wantRoles[i], c.Role)
		require.Len(t, c.Parts, 1)
		assert.Equal(t, wantText[i], c.Parts[0].Text)
	}

	cfg := req.Config
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "Be brief.", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.9, *cfg.TopP, 1e-6)
	assert.InDelta(t, 32, *cfg.TopK, 1e-6)
	assert.Equal(t, []string{"END"}, cfg.StopSequences)
}

func TestBuildRequest_Defaults(t *testing.T) {
	a := newAdapter("gemini-2.0-flash")

	req := a.BuildRequestTyped(provider.Exchange{Prompt: "hi"})
	assert.Equal(t, "gemini-2.0-flash", req.Model)
	assert.Nil(t, req.Config.SystemInstruction)
	assert.Nil(t, req.Config.Temperature)
	assert.Zero(t, req.Config.MaxOutputTokens)

	req = a.BuildRequestTyped(provider.Exchange{Prompt: "hi", Params: provider.Params{Model: "gemini-2.5-pro"}})
	assert.Equal(t, "gemini-2.5-pro", req.Model)
}

func TestParseResponse(t *testing.T) {
	a := newAdapter("")
	resp := &genai.GenerateContentResponse{
		ModelVersion: "gemini-2.5-flash-001",
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: "Hello "},
					{Text: "back"},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     9,
			CandidatesTokenCount: 2,
			TotalTokenCount:      11,
		},
	}

	reply, err := a.ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply.Content)
	assert.Equal(t, "gemini-2.5-flash-001", reply.Model)
	assert.Equal(t, "STOP", reply.FinishReason)
	assert.Equal(t, provider.TokenUsage{InputTokens: 9, OutputTokens: 2, TotalTokens: 11}, reply.Usage)
}

func TestParseResponse_Errors(t *testing.T) {
	a := newAdapter("")

	_, err := a.ParseResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)

	_, err = a.ParseResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)

	_, err = a.ParseResponse("nope")
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)
}

func TestSend_Errors(t *testing.T) {
	a := newAdapter("")

	_, err := a.Send(context.Background(), "nope")
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)

	_, err = a.Stream(context.Background(), &Request{}, func(string) {})
	assert.ErrorIs(t, err, provider.ErrCredentialsNotFound)
}

func TestWrapError(t *testing.T) {
	err := wrapError("send", genai.APIError{Code: 429, Message: "quota", Status: "RESOURCE_EXHAUSTED"})
	assert.ErrorIs(t, err, provider.ErrRateLimited)
	assert.True(t, provider.IsRetryable(err))

	err = wrapError("send", genai.APIError{Code: 403, Message: "denied"})
	assert.True(t, provider.IsAuthError(err))

	err = wrapError("send", context.DeadlineExceeded)
	assert.ErrorIs(t, err, provider.ErrTimeout)

	err = wrapError("send", errors.New("dial tcp: refused"))
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}
