package paymentRoutes

import (
	paymentController "paddock/controllers/payment"
	"paddock/middleware"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payments")

	// signed by the provider, no JWT
	paymentGroup.Post("/webhook", paymentController.Webhook)

	paymentGroup.Post("/reservations/:id/checkout", middleware.JWTMiddleware, paymentController.CreateCheckout)
	paymentGroup.Get("/mine", validators.Page(), middleware.JWTMiddleware, paymentController.MyPayments)
}
