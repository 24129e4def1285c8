package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

var runeCounter = tokens.CounterFunc(utf8.RuneCountInString)

// newTestSession returns a session whose budget leaves historyBudget tokens
// for history once the reply reservation is taken out.
func newTestSession(historyBudget int) *session.Session {
	sess := session.New("test", session.VendorOpenAI, historyBudget+10)
	sess.SetOption(OptMinAvailableTokens, 10)
	return sess
}

func TestTurn(t *testing.T) {
	a := newMockAdapter("hi there")
	sess := newTestSession(100)
	sess.SetOption(OptModel, "gpt-4o")

	result, err := Turn(context.Background(), a, sess, "hello", runeCounter, TurnOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hi there", result.Reply.Content)
	assert.Empty(t, result.Window)
	assert.Equal(t, 10, result.Overhead)
	assert.Equal(t, 10, result.Budget.Reserved())

	require.Len(t, a.sent, 1)
	assert.Equal(t, []string{"user"}, a.sent[0].Roles)
	assert.Equal(t, []string{"hello"}, a.sent[0].Contents)
	assert.Equal(t, "gpt-4o", a.sent[0].Params.Model)

	require.Len(t, sess.History, 2)
	assert.Equal(t, history.Human("hello"), sess.History[0])
	assert.Equal(t, history.Assistant("hi there"), sess.History[1])
}

func TestTurn_TrimsWindow(t *testing.T) {
	a := newMockAdapter("ok")
	sess := newTestSession(12)
	sess.Append(history.Human("AA").Pinned())
	sess.Append(history.Assistant("BBBBB"))
	sess.Append(history.Human("CCC"))

	// 12 history tokens: 6 for the prompt leaves 6 for AA + CCC.
	_, err := Turn(context.Background(), a, sess, "prompt", runeCounter, TurnOptions{})
	require.NoError(t, err)

	require.Len(t, a.sent, 1)
	assert.Equal(t, []string{"AA", "CCC", "prompt"}, a.sent[0].Contents)
	assert.Equal(t, []string{"user", "user", "user"}, a.sent[0].Roles)

	// The full history is kept.
	assert.Len(t, sess.History, 5)
}

func TestTurn_MaxTokensRaisesReservation(t *testing.T) {
	a := newMockAdapter("ok")
	sess := session.New("test", session.VendorOpenAI, 100)
	sess.SetOption(OptMinAvailableTokens, 10)
	sess.SetOption(OptMaxTokens, 90)
	sess.Append(history.Human("12345"))
	sess.Append(history.Assistant("123456"))

	result, err := Turn(context.Background(), a, sess, "abcd", runeCounter, TurnOptions{})
	require.NoError(t, err)

	// 100 - 90 reserved leaves 10: 4 for the prompt and 6 for the newest message.
	assert.Equal(t, 90, result.Overhead)
	assert.Equal(t, []string{"123456", "abcd"}, a.sent[0].Contents)
}

func TestTurn_SystemCountsAsOverhead(t *testing.T) {
	a := newMockAdapter("ok")
	a.overhead = 2
	sess := newTestSession(10)
	sess.SetOption(OptSystem, "sys")
	sess.Append(history.Human("xxxx"))

	result, err := Turn(context.Background(), a, sess, "abc", runeCounter, TurnOptions{})
	require.NoError(t, err)

	// 10 - (2 + 3 system) - 3 prompt leaves 2, too little for "xxxx".
	assert.Equal(t, 15, result.Overhead)
	assert.Empty(t, result.Window)
	assert.Equal(t, "sys", a.sent[0].Params.System)
}

func TestTurn_Pin(t *testing.T) {
	a := newMockAdapter("ok")
	sess := newTestSession(100)

	_, err := Turn(context.Background(), a, sess, "remember this", runeCounter, TurnOptions{Pin: true})
	require.NoError(t, err)

	require.Len(t, sess.History, 2)
	assert.True(t, sess.History[0].Pin)
	assert.False(t, sess.History[1].Pin)
}

func TestTurn_Stream(t *testing.T) {
	a := newMockAdapter("one two three")
	sess := newTestSession(100)

	var chunks []string
	result, err := Turn(context.Background(), a, sess, "count", runeCounter, TurnOptions{
		Stream:  true,
		OnChunk: func(s string) { chunks = append(chunks, s) },
	})
	require.NoError(t, err)

	assert.True(t, a.streamed)
	assert.Equal(t, "one two three", strings.Join(chunks, ""))
	assert.Equal(t, "one two three", result.Reply.Content)
}

func TestTurn_StreamUnsupportedFallsBackToSend(t *testing.T) {
	a := newMockAdapter("ok")
	a.caps.Streaming = false
	sess := newTestSession(100)

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{Stream: true})
	require.NoError(t, err)
	assert.False(t, a.streamed)
}

func TestTurn_BudgetExceeded(t *testing.T) {
	a := newMockAdapter("ok")
	sess := newTestSession(3)
	sess.Append(history.Human("pinned!").Pinned())

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{})
	assert.ErrorIs(t, err, history.ErrBudgetExceeded)

	// No call was made and the session is unchanged.
	assert.Empty(t, a.sent)
	assert.Len(t, sess.History, 1)
}

func TestTurn_SendErrorLeavesSessionUnchanged(t *testing.T) {
	a := newMockAdapter("ok")
	a.sendErr = StatusError("openai", "send", 503, errors.New("down"))
	sess := newTestSession(100)
	sess.Append(history.Human("before"))

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Len(t, sess.History, 1)
}

func TestTurn_EmptyReply(t *testing.T) {
	a := newMockAdapter("")
	sess := newTestSession(100)

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Empty(t, sess.History)
}

func TestTurn_VendorMismatch(t *testing.T) {
	a := newMockAdapter("ok")
	sess := session.New("test", session.VendorAnthropic, 100)

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTurn_InvalidSession(t *testing.T) {
	a := newMockAdapter("ok")
	sess := session.New("test", session.VendorOpenAI, 0)

	_, err := Turn(context.Background(), a, sess, "x", runeCounter, TurnOptions{})
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}
