package openai

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

func ptr[T any](v T) *T { return &v }

func TestRegistered(t *testing.T) {
	assert.True(t, provider.IsRegistered(session.VendorOpenAI))

	a, err := provider.New(context.Background(), session.VendorOpenAI, provider.Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, session.VendorOpenAI, a.Vendor())
}

func TestRoleFor(t *testing.T) {
	a := New(provider.Config{})
	assert.Equal(t, "user", a.RoleFor(history.RoleHuman))
	assert.Equal(t, "assistant", a.RoleFor(history.RoleAssistant))
}

func TestOverhead(t *testing.T) {
	a := New(provider.Config{})
	counter := tokens.CounterFunc(utf8.RuneCountInString)

	assert.Equal(t, framingTokens, a.Overhead("", counter))
	assert.Equal(t, framingTokens+5, a.Overhead("brief", counter))
}

func TestBuildRequest(t *testing.T) {
	a := New(provider.Config{})
	ex := provider.Exchange{
		Window: []history.Message{
			history.Human("What is Go?"),
			history.Assistant("A language."),
		},
		Prompt: "Who made it?",
		Params: provider.Params{
			System:      "Be brief.",
			MaxTokens:   200,
			Temperature: ptr(0.3),
			TopP:        ptr(0.9),
			Stop:        []string{"END"},
		},
	}

	params := a.BuildRequestTyped(ex)

	assert.Equal(t, DefaultModel, params.Model)
	require.Len(t, params.Messages, 4)
	require.NotNil(t, params.Messages[0].OfSystem)
	assert.Equal(t, "Be brief.", params.Messages[0].OfSystem.Content.OfString.Value)
	require.NotNil(t, params.Messages[1].OfUser)
	assert.Equal(t, "What is Go?", params.Messages[1].OfUser.Content.OfString.Value)
	require.NotNil(t, params.Messages[2].OfAssistant)
	assert.Equal(t, "A language.", params.Messages[2].OfAssistant.Content.OfString.Value)
	require.NotNil(t, params.Messages[3].OfUser)
	assert.Equal(t, "Who made it?", params.Messages[3].OfUser.Content.OfString.Value)

	assert.Equal(t, int64(200), params.MaxTokens.Value)
	assert.InDelta(t, 0.3, params.Temperature.Value, 1e-9)
	assert.InDelta(t, 0.9, params.TopP.Value, 1e-9)
	assert.Equal(t, []string{"END"}, params.Stop.OfStringArray)
}

func TestBuildRequest_ModelOverride(t *testing.T) {
	a := New(provider.Config{Model: "gpt-4o-mini"})

	params := a.BuildRequestTyped(provider.Exchange{Prompt: "hi"})
	assert.Equal(t, "gpt-4o-mini", string(params.Model))
	require.Len(t, params.Messages, 1)

	params = a.BuildRequestTyped(provider.Exchange{Prompt: "hi", Params: provider.Params{Model: "gpt-4"}})
	assert.Equal(t, "gpt-4", string(params.Model))
}

func TestParseResponse(t *testing.T) {
	a := New(provider.Config{})
	completion := &openai.ChatCompletion{
		Model: "gpt-4o-2024-08-06",
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: "Hello back"},
			FinishReason: "stop",
		}},
		Usage: openai.CompletionUsage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	}

	reply, err := a.ParseResponse(completion)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply.Content)
	assert.Equal(t, "gpt-4o-2024-08-06", reply.Model)
	assert.Equal(t, "stop", reply.FinishReason)
	assert.Equal(t, provider.TokenUsage{InputTokens: 12, OutputTokens: 3, TotalTokens: 15}, reply.Usage)
}

func TestParseResponse_Errors(t *testing.T) {
	a := New(provider.Config{})

	_, err := a.ParseResponse(&openai.ChatCompletion{})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)

	_, err = a.ParseResponse("not a completion")
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)
}

func TestSend_WrongRequestType(t *testing.T) {
	a := New(provider.Config{})

	_, err := a.Send(context.Background(), "nope")
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)

	_, err = a.Stream(context.Background(), 42, func(string) {})
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)
}

func TestWrapError(t *testing.T) {
	err := wrapError("send", context.DeadlineExceeded)
	assert.ErrorIs(t, err, provider.ErrTimeout)

	err = wrapError("send", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, provider.IsRetryable(err))

	err = wrapError("send", errors.New("connection refused"))
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}
