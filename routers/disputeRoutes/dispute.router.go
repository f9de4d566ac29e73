package disputeRoutes

import (
	disputeController "paddock/controllers/dispute"
	"paddock/middleware"
	disputeValidator "paddock/validators/dispute"

	"github.com/gofiber/fiber/v2"
)

func SetupDisputeRoutes(app *fiber.App) {
	disputeGroup := app.Group("/disputes")

	disputeGroup.Post("/", disputeValidator.CreateDispute(), middleware.JWTMiddleware, disputeController.OpenDispute)
	disputeGroup.Get("/mine", disputeValidator.ListDisputes(), middleware.JWTMiddleware, disputeController.MyDisputes)
	disputeGroup.Get("/:id", middleware.JWTMiddleware, disputeController.GetDispute)
}
