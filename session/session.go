package session

import (
	"fmt"
	"maps"

	"github.com/randalmurphal/chatkit/history"
	"github.com/randalmurphal/chatkit/tokens"
)

// Session is one named conversation.
type Session struct {
	// ID names the session. Anonymous sessions carry a generated id.
	ID string `json:"id" yaml:"id"`

	// Vendor is the API the session talks to.
	Vendor Vendor `json:"vendor" yaml:"vendor"`

	// History is every message of the conversation, oldest first.
	History []history.Message `json:"history" yaml:"history"`

	// Options are vendor settings such as model and temperature.
	// They are passed through to the vendor adapter untouched.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	// MaxSupportedTokens is the context window of the session's model.
	MaxSupportedTokens int `json:"max_supported_tokens" yaml:"max_supported_tokens"`
}

// New creates an empty session.
func New(id string, vendor Vendor, maxSupportedTokens int) *Session {
	return &Session{
		ID:                 id,
		Vendor:             vendor,
		Options:            make(map[string]any),
		MaxSupportedTokens: maxSupportedTokens,
	}
}

// Append adds a message to the end of the history.
func (s *Session) Append(m history.Message) {
	s.History = append(s.History, m)
}

// SubmissionWindow returns the history to send with newContent so the
// prompt fits in the session's MaxSupportedTokens. overhead covers the
// system prompt, wrapper formatting and the reply reservation.
func (s *Session) SubmissionWindow(newContent string, overhead int, counter tokens.Counter) ([]history.Message, error) {
	return history.Trim(s.History, newContent, overhead, s.MaxSupportedTokens, counter)
}

// SetOption stores a vendor option.
func (s *Session) SetOption(key string, value any) {
	if s.Options == nil {
		s.Options = make(map[string]any)
	}
	s.Options[key] = value
}

// Option returns a vendor option.
func (s *Session) Option(key string) (any, bool) {
	v, ok := s.Options[key]
	return v, ok
}

// Merge applies overrides onto the stored options. Nil values delete the key.
func (s *Session) Merge(overrides map[string]any) {
	for k, v := range overrides {
		if v == nil {
			delete(s.Options, k)
			continue
		}
		s.SetOption(k, v)
	}
}

// OptionsCopy returns a copy of the options map.
func (s *Session) OptionsCopy() map[string]any {
	return maps.Clone(s.Options)
}

// SetPin sets the pin flag of the message at index i. Negative indexes
// count from the end, so -1 is the newest message.
func (s *Session) SetPin(i int, pin bool) error {
	if i < 0 {
		i += len(s.History)
	}
	if i < 0 || i >= len(s.History) {
		return fmt.Errorf("message index %d out of range [0, %d)", i, len(s.History))
	}
	s.History[i].Pin = pin
	return nil
}

// Pinned returns the number of pinned messages.
func (s *Session) Pinned() int {
	n := 0
	for _, m := range s.History {
		if m.Pin {
			n++
		}
	}
	return n
}

// Validate checks that the session can be used for a turn.
func (s *Session) Validate() error {
	if !s.Vendor.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSession, ErrUnknownVendor, s.Vendor)
	}
	if s.MaxSupportedTokens <= 0 {
		return fmt.Errorf("%w: max_supported_tokens must be positive, got %d",
			ErrInvalidSession, s.MaxSupportedTokens)
	}
	return nil
}
