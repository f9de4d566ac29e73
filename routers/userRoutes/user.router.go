package userProfileRoutes

import (
	userProfileController "paddock/controllers/userControllers"
	"paddock/middleware"
	userProfileValidator "paddock/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/me", middleware.JWTMiddleware, userProfileController.GetProfile)
	userGroup.Put("/me", userProfileValidator.UpdateProfile(), middleware.JWTMiddleware, userProfileController.UpdateProfile)
	userGroup.Post("/me/avatar", middleware.JWTMiddleware, userProfileController.UploadAvatar)
	userGroup.Get("/:id", userProfileController.GetPublicProfile)
}
