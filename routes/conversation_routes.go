package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lawmate/lawmate_backend/controllers"
	"github.com/lawmate/lawmate_backend/middleware"
)

// RegisterConversationRoutes sets up the token-protected conversation routes
func RegisterConversationRoutes(e *echo.Echo, conversationController *controllers.ConversationController) {
	group := e.Group("/api/conversations")
	group.Use(middleware.JWTMiddleware())

	group.GET("", conversationController.GetConversations)
	group.GET("/:id", conversationController.GetConversation)
	group.POST("", conversationController.CreateConversation)
	group.POST("/:id/messages", conversationController.AddMessage)
	group.PUT("/:id", conversationController.UpdateConversation)
	group.DELETE("/:id", conversationController.DeleteConversation)
}
