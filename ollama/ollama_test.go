package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

func ptr[T any](v T) *T { return &v }

// chatServer answers /api/chat with one NDJSON line per chunk and records
// the last decoded request.
func chatServer(t *testing.T, chunks ...string) (*httptest.Server, *api.ChatRequest) {
	t.Helper()
	var got api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		for i, c := range chunks {
			done := i == len(chunks)-1
			line := fmt.Sprintf(`{"model":"llama3.2","message":{"role":"assistant","content":%q},"done":%t`, c, done)
			if done {
				line += `,"done_reason":"stop","prompt_eval_count":11,"eval_count":4`
			}
			fmt.Fprintln(w, line+"}")
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	a, err := New(provider.Config{BaseURL: baseURL})
	require.NoError(t, err)
	return a
}

func TestRegistered(t *testing.T) {
	assert.True(t, provider.IsRegistered(session.VendorOllama))

	a, err := provider.New(context.Background(), session.VendorOllama, provider.Config{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, session.VendorOllama, a.Vendor())
}

func TestNew_BadURL(t *testing.T) {
	_, err := New(provider.Config{BaseURL: "http://[::1"})
	assert.ErrorIs(t, err, provider.ErrInvalidRequest)
}

func TestOverhead(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:11434")
	counter := tokens.CounterFunc(utf8.RuneCountInString)

	assert.Equal(t, framingTokens, a.Overhead("", counter))
	assert.Equal(t, framingTokens+3, a.Overhead("hey", counter))
}

func TestBuildRequest(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:11434")
	ex := provider.Exchange{
		Window: []history.Message{
			history.Human("What is Go?"),
			history.Assistant("A language."),
		},
		Prompt: "Who made it?",
		Params: provider.Params{
			System:      "Be brief.",
			MaxTokens:   128,
			Temperature: ptr(0.7),
			TopP:        ptr(0.95),
			TopK:        ptr(20),
			Stop:        []string{"END"},
		},
	}

	req := a.BuildRequestTyped(ex)

	assert.Equal(t, DefaultModel, req.Model)
	require.NotNil(t, req.Stream)
	assert.False(t, *req.Stream)
	assert.Equal(t, []api.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "What is Go?"},
		{Role: "assistant", Content: "A language."},
		{Role: "user", Content: "Who made it?"},
	}, req.Messages)
	assert.Equal(t, map[string]any{
		"num_predict": 128,
		"temperature": 0.7,
		"top_p":       0.95,
		"top_k":       20,
		"stop":        []string{"END"},
	}, req.Options)
}

func TestBuildRequest_NoOptions(t *testing.T) {
	a, err := New(provider.Config{BaseURL: "http://localhost:11434", Model: "mistral"})
	require.NoError(t, err)

	req := a.BuildRequestTyped(provider.Exchange{Prompt: "hi"})
	assert.Equal(t, "mistral", req.Model)
	assert.Nil(t, req.Options)
	require.Len(t, req.Messages, 1)
}

func TestParseResponse(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:11434")
	resp := &api.ChatResponse{
		Model:      "llama3.2",
		Message:    api.Message{Role: "assistant", Content: "Hello back"},
		Done:       true,
		DoneReason: "stop",
		Metrics:    api.Metrics{PromptEvalCount: 7, EvalCount: 3},
	}

	reply, err := a.ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply.Content)
	assert.Equal(t, "llama3.2", reply.Model)
	assert.Equal(t, "stop", reply.FinishReason)
	assert.Equal(t, provider.TokenUsage{InputTokens: 7, OutputTokens: 3, TotalTokens: 10}, reply.Usage)

	_, err = a.ParseResponse(&api.ChatResponse{})
	assert.ErrorIs(t, err, provider.ErrEmptyResponse)

	_, err = a.ParseResponse(api.ChatResponse{})
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)
}

func TestSend(t *testing.T) {
	srv, got := chatServer(t, "Hello back")
	a := newTestAdapter(t, srv.URL)

	req := a.BuildRequestTyped(provider.Exchange{Prompt: "hello"})
	resp, err := a.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "hello", got.Messages[0].Content)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)

	reply, err := a.ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply.Content)
	assert.Equal(t, 15, reply.Usage.TotalTokens)
}

func TestStream(t *testing.T) {
	srv, got := chatServer(t, "Hel", "lo ", "back")
	a := newTestAdapter(t, srv.URL)

	var chunks []string
	req := a.BuildRequestTyped(provider.Exchange{Prompt: "hello"})
	resp, err := a.Stream(context.Background(), req, func(s string) { chunks = append(chunks, s) })
	require.NoError(t, err)

	require.NotNil(t, got.Stream)
	assert.True(t, *got.Stream)
	assert.Equal(t, []string{"Hel", "lo ", "back"}, chunks)

	reply, err := a.ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply.Content)
	assert.Equal(t, "stop", reply.FinishReason)
}

func TestSend_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model \"nope\" not found, try pulling it first"}`)
	}))
	t.Cleanup(srv.Close)
	a := newTestAdapter(t, srv.URL)

	_, err := a.Send(context.Background(), a.BuildRequestTyped(provider.Exchange{Prompt: "hi"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrInvalidRequest)
	assert.False(t, provider.IsRetryable(err))
}

func TestSend_WrongRequestType(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:11434")

	_, err := a.Send(context.Background(), "nope")
	assert.ErrorIs(t, err, provider.ErrUnexpectedType)
}

func TestWrapError(t *testing.T) {
	err := wrapError("send", api.StatusError{StatusCode: http.StatusServiceUnavailable, Status: "503"})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.True(t, provider.IsRetryable(err))

	err = wrapError("send", context.DeadlineExceeded)
	assert.ErrorIs(t, err, provider.ErrTimeout)
}
