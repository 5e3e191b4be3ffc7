// Package chat provides domain entities for chat-based interactions.
package chat

import (
	"fmt"
	"strings"
)

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// RoleSystem represents a system message
	RoleSystem MessageRole = "system"
	// RoleUser represents a user message
	RoleUser MessageRole = "user"
	// RoleAssistant represents an assistant message
	RoleAssistant MessageRole = "assistant"
)

// Message is a provider-neutral chat message.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Validate validates the message.
func (m Message) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	return nil
}

// IsValid checks if the message role is valid.
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r MessageRole) String() string {
	return string(r)
}

// ParseRole converts a string into a MessageRole, accepting any case.
func ParseRole(s string) (MessageRole, error) {
	role := MessageRole(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid message role: %s", s)
	}
	return role, nil
}

// CloneMessages returns a copy of msgs that can be modified freely.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// LastIndex returns the index of the last message with the given role, or -1.
func LastIndex(msgs []Message, role MessageRole) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == role {
			return i
		}
	}
	return -1
}

// FirstIndex returns the index of the first message with the given role, or -1.
func FirstIndex(msgs []Message, role MessageRole) int {
	for i, m := range msgs {
		if m.Role == role {
			return i
		}
	}
	return -1
}
