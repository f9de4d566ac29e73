package messagingRoutes

import (
	messagingController "paddock/controllers/messaging"
	"paddock/middleware"
	"paddock/validators"
	messagingValidator "paddock/validators/messaging"

	"github.com/gofiber/fiber/v2"
)

func SetupMessagingRoutes(app *fiber.App) {
	conversationGroup := app.Group("/conversations")

	// one limiter for both send paths; it runs after JWT so it keys on the user id
	sendLimit := middleware.RateLimit()

	conversationGroup.Post("/", messagingValidator.StartConversation(), middleware.JWTMiddleware, sendLimit, messagingController.StartConversation)
	conversationGroup.Get("/", middleware.JWTMiddleware, messagingController.ListConversations)
	conversationGroup.Get("/unread", middleware.JWTMiddleware, messagingController.UnreadCount)
	conversationGroup.Get("/:id/messages", validators.Page(), middleware.JWTMiddleware, messagingController.ListMessages)
	conversationGroup.Post("/:id/messages", messagingValidator.SendMessage(), middleware.JWTMiddleware, sendLimit, messagingController.SendMessage)
}
