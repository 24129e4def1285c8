package history

import (
	"fmt"
	"strings"
)

// Role identifies who authored a message.
type Role string

// Message roles. Vendor role names are mapped to these by the adapters.
const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a role name to a Role. Vendor spellings ("user",
// "model") are accepted.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human", "user":
		return RoleHuman, nil
	case "assistant", "model", "ai":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is one turn of a conversation.
type Message struct {
	Content string `json:"content" yaml:"content"`
	Role    Role   `json:"role" yaml:"role"`
	Pin     bool   `json:"pin,omitempty" yaml:"pin,omitempty"`
}

// NewMessage creates an unpinned message.
func NewMessage(role Role, content string) Message {
	return Message{Content: content, Role: role}
}

// Human creates an unpinned human message.
func Human(content string) Message {
	return NewMessage(RoleHuman, content)
}

// Assistant creates an unpinned assistant message.
func Assistant(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// Pinned returns a copy of m with Pin set.
func (m Message) Pinned() Message {
	m.Pin = true
	return m
}
