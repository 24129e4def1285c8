package provider

import (
	"context"
	"strings"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// mockRequest is what mockAdapter.BuildRequest produces.
type mockRequest struct {
	Roles    []string
	Contents []string
	Params   Params
}

// mockAdapter implements Adapter without a network.
type mockAdapter struct {
	vendor   session.Vendor
	reply    string
	sendErr  error
	overhead int
	caps     Capabilities

	sent     []mockRequest
	streamed bool
}

func newMockAdapter(reply string) *mockAdapter {
	return &mockAdapter{
		vendor: session.VendorOpenAI,
		reply:  reply,
		caps:   Capabilities{Streaming: true},
	}
}

func (m *mockAdapter) Vendor() session.Vendor { return m.vendor }

func (m *mockAdapter) RoleFor(role history.Role) string {
	if role == history.RoleHuman {
		return "user"
	}
	return "assistant"
}

func (m *mockAdapter) Overhead(system string, counter tokens.Counter) int {
	return m.overhead + counter.Count(system)
}

func (m *mockAdapter) BuildRequest(ex Exchange) (any, error) {
	req := mockRequest{Params: ex.Params}
	for _, msg := range ex.Window {
		req.Roles = append(req.Roles, m.RoleFor(msg.Role))
		req.Contents = append(req.Contents, msg.Content)
	}
	req.Roles = append(req.Roles, "user")
	req.Contents = append(req.Contents, ex.Prompt)
	return req, nil
}

func (m *mockAdapter) ParseResponse(resp any) (Reply, error) {
	s, ok := resp.(string)
	if !ok {
		return Reply{}, ErrUnexpectedType
	}
	if s == "" {
		return Reply{}, ErrEmptyResponse
	}
	return Reply{Content: s, Model: "mock", Usage: TokenUsage{InputTokens: 1, OutputTokens: 1, TotalTokens: 2}}, nil
}

func (m *mockAdapter) Send(ctx context.Context, req any) (any, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, req.(mockRequest))
	return m.reply, nil
}

func (m *mockAdapter) Stream(ctx context.Context, req any, onChunk func(string)) (any, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.streamed = true
	m.sent = append(m.sent, req.(mockRequest))
	for _, word := range strings.SplitAfter(m.reply, " ") {
		onChunk(word)
	}
	return m.reply, nil
}

func (m *mockAdapter) Capabilities() Capabilities { return m.caps }
