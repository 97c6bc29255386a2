// models/conversation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIAuthor tags messages generated by the assistant rather than the user
const AIAuthor = "AI"

// DefaultConversationTitle is used when a conversation is created without one
const DefaultConversationTitle = "New Conversation"

// MarkedSpan is a (kind, text) rendering hint consumed by the client.
// ElementText is one of "section-header", "numbered", "bullet", "paragraph".
type MarkedSpan struct {
	ElementText string `json:"elementText" bson:"elementText"`
	Text        string `json:"text" bson:"text"`
}

// Message is immutable once appended; a conversation's sequence only grows
type Message struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User      string             `json:"user" bson:"user"`
	Mark      []MarkedSpan       `json:"mark" bson:"mark"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// Conversation owns an ordered message sequence for exactly one user
type Conversation struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Title     string             `json:"title" bson:"title"`
	Messages  []Message          `json:"messages" bson:"messages"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateConversationRequest creates a conversation, title optional
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// UpdateTitleRequest renames a conversation
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required"`
}

// AppendMessageRequest appends one message to a conversation
type AppendMessageRequest struct {
	User string       `json:"user" validate:"required"`
	Mark []MarkedSpan `json:"mark"`
}
