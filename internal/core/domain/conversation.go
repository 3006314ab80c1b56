package domain

import (
	"strings"
	"time"
)

// DefaultConversationTitle is used when a conversation is created without a
// usable title.
const DefaultConversationTitle = "Nueva conversación"

// MessageRole is the author of a message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// Valid reports whether r is a known message role.
func (r MessageRole) Valid() bool {
	switch r {
	case MessageRoleUser, MessageRoleAssistant, MessageRoleSystem:
		return true
	}
	return false
}

// Conversation is owned by exactly one user for its whole life.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is a list entry annotated with its message count.
type ConversationSummary struct {
	Conversation
	MessageCount int64 `json:"message_count"`
}

// ConversationDetail is a conversation with its messages in ascending
// timestamp order.
type ConversationDetail struct {
	Conversation
	Messages []Message `json:"messages"`
}

// Message is an immutable entry of a conversation's append-only log.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Images         []string    `json:"images,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// TitleOrDefault trims title and falls back to DefaultConversationTitle.
func TitleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return DefaultConversationTitle
}
