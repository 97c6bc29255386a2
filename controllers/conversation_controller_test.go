package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawmate/lawmate_backend/models"
)

func TestConversationsRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/conversations", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateConversationDefaultTitle(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	rec := s.do(t, http.MethodPost, "/api/conversations", token, map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)

	conversation := decodeConversation(t, rec)
	assert.Equal(t, models.DefaultConversationTitle, conversation.Title)
	assert.Empty(t, conversation.Messages)
}

func TestEndToEndScenario(t *testing.T) {
	s := newTestServer(t)

	// Register, verify, receive a token
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	// Create a conversation
	rec := s.do(t, http.MethodPost, "/api/conversations", token, map[string]string{
		"title": "Lease question",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeConversation(t, rec)
	assert.Equal(t, "Lease question", created.Title)

	// Append a message; the full updated conversation comes back
	rec = s.do(t, http.MethodPost, "/api/conversations/"+created.ID.Hex()+"/messages", token, map[string]interface{}{
		"user": "Can I break my lease?",
		"mark": []map[string]string{
			{"elementText": "paragraph", "text": "Can I break my lease?"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeConversation(t, rec)
	require.Len(t, updated.Messages, 1)
	assert.Equal(t, "Can I break my lease?", updated.Messages[0].User)
	require.Len(t, updated.Messages[0].Mark, 1)
	assert.Equal(t, "paragraph", updated.Messages[0].Mark[0].ElementText)
	assert.Equal(t, "Lease question", updated.Title)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	// Fetch it back
	rec = s.do(t, http.MethodGet, "/api/conversations/"+created.ID.Hex(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeConversation(t, rec)
	assert.Len(t, fetched.Messages, 1)
	assert.Equal(t, "Lease question", fetched.Title)
}

func TestAppendPreservesOrderOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	rec := s.do(t, http.MethodPost, "/api/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversation := decodeConversation(t, rec)

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		rec = s.do(t, http.MethodPost, "/api/conversations/"+conversation.ID.Hex()+"/messages", token, map[string]interface{}{
			"user": text,
			"mark": []map[string]string{{"elementText": "paragraph", "text": text}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	final := decodeConversation(t, rec)
	require.Len(t, final.Messages, 3)
	for i, text := range texts {
		assert.Equal(t, text, final.Messages[i].User)
	}
}

func TestListSortedByRecentActivity(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	rec := s.do(t, http.MethodPost, "/api/conversations", token, map[string]string{"title": "older"})
	require.Equal(t, http.StatusOK, rec.Code)
	older := decodeConversation(t, rec)

	rec = s.do(t, http.MethodPost, "/api/conversations", token, map[string]string{"title": "newer"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Activity on the older conversation moves it back to the top
	rec = s.do(t, http.MethodPost, "/api/conversations/"+older.ID.Hex()+"/messages", token, map[string]interface{}{
		"user": "bump",
		"mark": []map[string]string{{"elementText": "paragraph", "text": "bump"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conversations []models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversations))
	require.Len(t, conversations, 2)
	assert.Equal(t, "older", conversations[0].Title)
}

func TestUpdateTitleAndDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	rec := s.do(t, http.MethodPost, "/api/conversations", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conversation := decodeConversation(t, rec)

	rec = s.do(t, http.MethodPut, "/api/conversations/"+conversation.ID.Hex(), token, map[string]string{
		"title": "Security deposit",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decodeConversation(t, rec)
	assert.Equal(t, "Security deposit", renamed.Title)

	rec = s.do(t, http.MethodDelete, "/api/conversations/"+conversation.ID.Hex(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/conversations/"+conversation.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	s := newTestServer(t)
	ownerToken := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")
	otherToken := s.registerAndVerify(t, "+15551230001", "Bob", "2 Main St")

	rec := s.do(t, http.MethodPost, "/api/conversations", ownerToken, map[string]string{"title": "private"})
	require.Equal(t, http.StatusOK, rec.Code)
	conversation := decodeConversation(t, rec)

	id := conversation.ID.Hex()
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/conversations/"+id, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/conversations/"+id, otherToken, map[string]string{"title": "hijacked"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/conversations/"+id, otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", otherToken, map[string]interface{}{
		"user": "intrusion",
		"mark": []map[string]string{{"elementText": "paragraph", "text": "intrusion"}},
	}).Code)

	// Untouched for the owner
	rec = s.do(t, http.MethodGet, "/api/conversations/"+id, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeConversation(t, rec)
	assert.Equal(t, "private", fetched.Title)
	assert.Empty(t, fetched.Messages)
}

func TestUnknownConversationID(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndVerify(t, "+15551230000", "Ann", "1 Main St")

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/conversations/64f1c0ffee0000000000abcd", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/conversations/not-an-id", token, nil).Code)
}
