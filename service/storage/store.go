package storage

import (
	"context"
	"time"
)

// User carries the display attributes the chat surface needs; account
// management lives elsewhere.
type User struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// Conversation is a two-participant thread.
type Conversation struct {
	ID           string    `bson:"_id" json:"id"`
	Participants []string  `bson:"participants" json:"participants"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Message is one persisted chat message with its sender populated for
// display. Persistence keeps only the sender id; implementations populate
// the sender on the way out.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Sender         User      `json:"sender"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store is the persistence collaborator. The relay core uses only
// CreateMessage and GetConversationParticipants; the REST surface uses the
// rest.
type Store interface {
	// CreateMessage persists a message and returns it with the
	// server-assigned id, timestamp and populated sender attributes.
	// It fails with errs.ErrNotFound if the conversation does not exist.
	CreateMessage(ctx context.Context, conversationID, senderID, body string) (*Message, error)

	// GetConversationParticipants returns the conversation's participant
	// pair, failing with errs.ErrNotFound for an unknown conversation.
	GetConversationParticipants(ctx context.Context, conversationID string) ([2]string, error)

	// FindOrCreateConversation returns the existing two-party conversation
	// for the pair, creating it on first contact. Argument order is
	// irrelevant.
	FindOrCreateConversation(ctx context.Context, userA, userB string) (*Conversation, error)

	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}
