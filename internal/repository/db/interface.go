package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a referenced row does not exist
var ErrNotFound = errors.New("not found")

// Database defines the interface for all persistence operations.
// Services depend on it so that tests can swap in mocks or the memory store.
type Database interface {
	// Conversations
	CreateConversation(ctx context.Context, title string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	UpdateConversationSummary(ctx context.Context, id, summary string) error
	DeleteConversation(ctx context.Context, id string) error

	// Messages
	AddMessage(ctx context.Context, msg NewMessage) (*Message, error)
	GetConversationMessages(ctx context.Context, conversationID, search string) ([]Message, error)
	GetLatestMessage(ctx context.Context, conversationID string) (*Message, error)

	Close() error
}
