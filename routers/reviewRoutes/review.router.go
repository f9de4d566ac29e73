package reviewRoutes

import (
	reviewController "paddock/controllers/review"
	"paddock/middleware"
	"paddock/validators"
	reviewValidator "paddock/validators/review"

	"github.com/gofiber/fiber/v2"
)

func SetupReviewRoutes(app *fiber.App) {
	reviewGroup := app.Group("/reviews")

	reviewGroup.Post("/", reviewValidator.CreateReview(), middleware.JWTMiddleware, reviewController.CreateReview)
	reviewGroup.Post("/:id/reply", reviewValidator.Reply(), middleware.JWTMiddleware, reviewController.ReplyToReview)

	app.Get("/vehicles/:id/reviews", validators.Page(), reviewController.VehicleReviews)
	app.Get("/user/:id/reviews", validators.Page(), reviewController.OwnerReviews)
}
