// controllers/conversation_controller.go
package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lawmate/lawmate_backend/middleware"
	"github.com/lawmate/lawmate_backend/models"
	"github.com/lawmate/lawmate_backend/repositories"
)

// ConversationController serves the authenticated conversation CRUD surface
type ConversationController struct {
	Conversations repositories.ConversationRepository
	logger        *log.Logger
}

// NewConversationController creates a new conversation controller
func NewConversationController(conversations repositories.ConversationRepository) *ConversationController {
	return &ConversationController{
		Conversations: conversations,
		logger:        log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	}
}

// userID resolves the authenticated identity from the validated token
func (cc *ConversationController) userID(c echo.Context) (primitive.ObjectID, error) {
	idHex, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(idHex)
}

// GetConversations lists the user's conversations, newest activity first.
// GET /api/conversations
func (cc *ConversationController) GetConversations(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	conversations, err := cc.Conversations.List(c.Request().Context(), userID)
	if err != nil {
		cc.logger.Printf("Error listing conversations for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, conversations)
}

// GetConversation fetches one conversation the user owns.
// GET /api/conversations/:id
func (cc *ConversationController) GetConversation(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
	}

	conversation, err := cc.Conversations.Get(c.Request().Context(), userID, id)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
		}
		cc.logger.Printf("Error fetching conversation %s: %v", id.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, conversation)
}

// CreateConversation starts an empty conversation, title optional.
// POST /api/conversations
func (cc *ConversationController) CreateConversation(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}

	conversation, err := cc.Conversations.Create(c.Request().Context(), userID, req.Title)
	if err != nil {
		cc.logger.Printf("Error creating conversation for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, conversation)
}

// AddMessage appends a message and returns the whole updated conversation,
// which the client uses to resynchronize its local state.
// POST /api/conversations/:id/messages
func (cc *ConversationController) AddMessage(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
	}

	var req models.AppendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Message text is required"})
	}

	message := models.Message{
		ID:        primitive.NewObjectID(),
		User:      req.User,
		Mark:      req.Mark,
		Timestamp: time.Now(),
	}

	conversation, err := cc.Conversations.AppendMessage(c.Request().Context(), userID, id, message)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
		}
		cc.logger.Printf("Error appending message to %s: %v", id.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, conversation)
}

// UpdateConversation renames a conversation.
// PUT /api/conversations/:id
func (cc *ConversationController) UpdateConversation(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
	}

	var req models.UpdateTitleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.MessageResponse{Msg: "Title is required"})
	}

	conversation, err := cc.Conversations.Rename(c.Request().Context(), userID, id, req.Title)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
		}
		cc.logger.Printf("Error renaming conversation %s: %v", id.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, conversation)
}

// DeleteConversation removes a conversation the user owns.
// DELETE /api/conversations/:id
func (cc *ConversationController) DeleteConversation(c echo.Context) error {
	userID, err := cc.userID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.MessageResponse{Msg: "Invalid token"})
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
	}

	err = cc.Conversations.Delete(c.Request().Context(), userID, id)
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, models.MessageResponse{Msg: "Conversation not found"})
		}
		cc.logger.Printf("Error deleting conversation %s: %v", id.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{Msg: "Server error"})
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Msg: "Conversation deleted"})
}
