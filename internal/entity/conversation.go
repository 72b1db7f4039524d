package entity

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation groups the message exchange of one visitor session. The
// dashboard only reads these; they are written by the bot runtimes.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	ClientID       string    `json:"clientId"`
	Channel        string    `json:"channel"`
	Sender         string    `json:"sender,omitempty"` // e.g. "whatsapp:+34600..."
	StartedAt      time.Time `json:"startedAt"`
	Messages       []Message `json:"messages"`
}

// Pagination is the page indicator for numbered-page endpoints.
type Pagination struct {
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
}

type ConversationFilter struct {
	Search string
	Since  time.Time
	Page   int
	Limit  int
}

type ConversationRepository interface {
	List(ctx context.Context, clientID, channel string, f ConversationFilter) ([]Conversation, *Pagination, error)
	FindByID(ctx context.Context, clientID, conversationID string) (*Conversation, error)
}
