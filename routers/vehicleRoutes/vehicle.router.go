package vehicleRoutes

import (
	vehicleController "paddock/controllers/vehicle"
	"paddock/middleware"
	vehicleValidator "paddock/validators/vehicle"

	"github.com/gofiber/fiber/v2"
)

func SetupVehicleRoutes(app *fiber.App) {
	vehicleGroup := app.Group("/vehicles")

	vehicleGroup.Get("/", vehicleController.ListVehicles)
	vehicleGroup.Post("/", vehicleValidator.CreateVehicle(), middleware.JWTMiddleware, vehicleController.CreateVehicle)

	// static paths go before /:id
	vehicleGroup.Get("/mine", middleware.JWTMiddleware, vehicleController.MyVehicles)
	vehicleGroup.Get("/favorites", middleware.JWTMiddleware, vehicleController.ListFavorites)

	vehicleGroup.Get("/:id", middleware.OptionalJWTMiddleware, vehicleController.GetVehicle)
	vehicleGroup.Put("/:id", vehicleValidator.UpdateVehicle(), middleware.JWTMiddleware, vehicleController.UpdateVehicle)
	vehicleGroup.Delete("/:id", middleware.JWTMiddleware, vehicleController.DeleteVehicle)
	vehicleGroup.Patch("/:id/status", vehicleValidator.SetStatus(), middleware.JWTMiddleware, vehicleController.SetVehicleStatus)
	vehicleGroup.Post("/:id/images", middleware.JWTMiddleware, vehicleController.AddVehicleImage)
	vehicleGroup.Delete("/:id/images", vehicleValidator.RemoveImage(), middleware.JWTMiddleware, vehicleController.RemoveVehicleImage)
	vehicleGroup.Get("/:id/availability", vehicleValidator.Availability(), vehicleController.GetAvailability)
	vehicleGroup.Post("/:id/favorite", middleware.JWTMiddleware, vehicleController.AddFavorite)
	vehicleGroup.Delete("/:id/favorite", middleware.JWTMiddleware, vehicleController.RemoveFavorite)
}
