package reservationRoutes

import (
	reservationController "paddock/controllers/reservation"
	"paddock/middleware"
	reservationValidator "paddock/validators/reservation"

	"github.com/gofiber/fiber/v2"
)

func SetupReservationRoutes(app *fiber.App) {
	reservationGroup := app.Group("/reservations")

	reservationGroup.Post("/", reservationValidator.CreateReservation(), middleware.JWTMiddleware, reservationController.CreateReservation)
	reservationGroup.Get("/mine", reservationValidator.ListReservations(), middleware.JWTMiddleware, reservationController.MyReservations)
	reservationGroup.Get("/owner", reservationValidator.ListReservations(), middleware.JWTMiddleware, reservationController.OwnerReservations)

	reservationGroup.Get("/:id", middleware.JWTMiddleware, reservationController.GetReservation)
	reservationGroup.Patch("/:id/approve", middleware.JWTMiddleware, reservationController.ApproveReservation)
	reservationGroup.Patch("/:id/decline", reservationValidator.Reason(), middleware.JWTMiddleware, reservationController.DeclineReservation)
	reservationGroup.Patch("/:id/cancel", reservationValidator.Reason(), middleware.JWTMiddleware, reservationController.CancelReservation)
	reservationGroup.Patch("/:id/complete", middleware.JWTMiddleware, reservationController.CompleteReservation)
}
