package routers

import (
	"errors"

	"paddock/config"
	"paddock/database"
	"paddock/middleware"
	adminRoutes "paddock/routers/adminRoutes"
	authRoutes "paddock/routers/authRoutes"
	disputeRoutes "paddock/routers/disputeRoutes"
	messagingRoutes "paddock/routers/messagingRoutes"
	motorsportsRoutes "paddock/routers/motorsportsRoutes"
	paymentRoutes "paddock/routers/paymentRoutes"
	reservationRoutes "paddock/routers/reservationRoutes"
	reviewRoutes "paddock/routers/reviewRoutes"
	userProfileRoutes "paddock/routers/userRoutes"
	vehicleRoutes "paddock/routers/vehicleRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// NewApp builds the HTTP application with every route group mounted.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   config.AppConfig.ServiceName,
		BodyLimit: (config.AppConfig.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Something went wrong, please try again!"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code, message = fe.Code, fe.Message
			}
			return middleware.JsonResponse(c, code, false, message, nil)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(middleware.Metrics)

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.Ping(); err != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})
	app.Get("/metrics", middleware.MetricsHandler())

	// Uploaded images
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	vehicleRoutes.SetupVehicleRoutes(app)
	reservationRoutes.SetupReservationRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	reviewRoutes.SetupReviewRoutes(app)
	disputeRoutes.SetupDisputeRoutes(app)
	messagingRoutes.SetupMessagingRoutes(app)
	motorsportsRoutes.SetupMotorsportsRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	return app
}
