package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lawmate/lawmate_backend/models"
)

func messageFixture(text string) models.Message {
	return models.Message{
		ID:   primitive.NewObjectID(),
		User: text,
		Mark: []models.MarkedSpan{
			{ElementText: "paragraph", Text: text},
		},
		Timestamp: time.Now(),
	}
}

func TestCreateConversationDefaults(t *testing.T) {
	repo := NewMemoryConversationRepository()
	userID := primitive.NewObjectID()

	conversation, err := repo.Create(context.Background(), userID, "")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultConversationTitle, conversation.Title)
	assert.Equal(t, userID, conversation.UserID)
	assert.Empty(t, conversation.Messages)
	assert.Equal(t, conversation.CreatedAt, conversation.UpdatedAt)
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	conversation, err := repo.Create(ctx, userID, "Lease question")
	require.NoError(t, err)

	texts := []string{"first", "second", "third"}
	previous := *conversation
	for i, text := range texts {
		updated, err := repo.AppendMessage(ctx, userID, conversation.ID, messageFixture(text))
		require.NoError(t, err)

		assert.Len(t, updated.Messages, i+1)
		assert.False(t, updated.UpdatedAt.Before(previous.UpdatedAt))
		previous = *updated
	}

	final, err := repo.Get(ctx, userID, conversation.ID)
	require.NoError(t, err)
	for i, text := range texts {
		assert.Equal(t, text, final.Messages[i].User)
	}
}

func TestListSortedByActivity(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	now := time.Now()
	clock := now
	repo.Now = func() time.Time { return clock }

	older, err := repo.Create(ctx, userID, "older")
	require.NoError(t, err)
	clock = now.Add(time.Minute)
	newer, err := repo.Create(ctx, userID, "newer")
	require.NoError(t, err)

	conversations, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, newer.ID, conversations[0].ID)

	// Appending to the older conversation bumps it to the top
	clock = now.Add(2 * time.Minute)
	_, err = repo.AppendMessage(ctx, userID, older.ID, messageFixture("bump"))
	require.NoError(t, err)

	conversations, err = repo.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, conversations[0].ID)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	conversation, err := repo.Create(ctx, owner, "private")
	require.NoError(t, err)

	_, err = repo.Get(ctx, other, conversation.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.AppendMessage(ctx, other, conversation.ID, messageFixture("intrusion"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.Rename(ctx, other, conversation.ID, "hijacked")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = repo.Delete(ctx, other, conversation.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The owner still sees it, untouched
	found, err := repo.Get(ctx, owner, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", found.Title)
	assert.Empty(t, found.Messages)

	// Nothing leaks into the other user's listing either
	conversations, err := repo.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestRenameAndDelete(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	conversation, err := repo.Create(ctx, userID, "draft")
	require.NoError(t, err)

	renamed, err := repo.Rename(ctx, userID, conversation.ID, "Lease question")
	require.NoError(t, err)
	assert.Equal(t, "Lease question", renamed.Title)
	assert.False(t, renamed.UpdatedAt.Before(conversation.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, userID, conversation.ID))
	_, err = repo.Get(ctx, userID, conversation.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
