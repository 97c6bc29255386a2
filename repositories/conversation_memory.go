// repositories/conversation_memory.go
package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lawmate/lawmate_backend/models"
)

// MemoryConversationRepository is an in-memory ConversationRepository for tests
type MemoryConversationRepository struct {
	mu            sync.RWMutex
	conversations map[primitive.ObjectID]models.Conversation
	Now           func() time.Time
}

// NewMemoryConversationRepository builds an in-memory conversation store
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		conversations: make(map[primitive.ObjectID]models.Conversation),
		Now:           time.Now,
	}
}

func (r *MemoryConversationRepository) List(_ context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversations := []models.Conversation{}
	for _, conversation := range r.conversations {
		if conversation.UserID == userID {
			conversations = append(conversations, copyConversation(conversation))
		}
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

func (r *MemoryConversationRepository) Get(_ context.Context, userID, id primitive.ObjectID) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversation, ok := r.conversations[id]
	if !ok || conversation.UserID != userID {
		return nil, models.ErrNotFound
	}

	c := copyConversation(conversation)
	return &c, nil
}

func (r *MemoryConversationRepository) Create(_ context.Context, userID primitive.ObjectID, title string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if title == "" {
		title = models.DefaultConversationTitle
	}

	now := r.Now()
	conversation := models.Conversation{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.conversations[conversation.ID] = conversation

	c := copyConversation(conversation)
	return &c, nil
}

func (r *MemoryConversationRepository) AppendMessage(_ context.Context, userID, id primitive.ObjectID, message models.Message) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok || conversation.UserID != userID {
		return nil, models.ErrNotFound
	}

	conversation.Messages = append(conversation.Messages, message)
	conversation.UpdatedAt = r.Now()
	r.conversations[id] = conversation

	c := copyConversation(conversation)
	return &c, nil
}

func (r *MemoryConversationRepository) Rename(_ context.Context, userID, id primitive.ObjectID, title string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok || conversation.UserID != userID {
		return nil, models.ErrNotFound
	}

	conversation.Title = title
	conversation.UpdatedAt = r.Now()
	r.conversations[id] = conversation

	c := copyConversation(conversation)
	return &c, nil
}

func (r *MemoryConversationRepository) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok || conversation.UserID != userID {
		return models.ErrNotFound
	}

	delete(r.conversations, id)
	return nil
}

func copyConversation(conversation models.Conversation) models.Conversation {
	messages := make([]models.Message, len(conversation.Messages))
	copy(messages, conversation.Messages)
	conversation.Messages = messages
	return conversation
}
