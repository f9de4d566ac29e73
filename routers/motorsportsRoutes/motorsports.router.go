package motorsportsRoutes

import (
	motorsportsController "paddock/controllers/motorsports"
	"paddock/middleware"
	motorsportsValidator "paddock/validators/motorsports"

	"github.com/gofiber/fiber/v2"
)

func SetupMotorsportsRoutes(app *fiber.App) {
	driverGroup := app.Group("/drivers")

	driverGroup.Get("/", motorsportsValidator.Directory("lookingForTeam"), motorsportsController.ListDrivers)
	driverGroup.Get("/me", middleware.JWTMiddleware, motorsportsController.GetMyDriverProfile)
	driverGroup.Put("/me", motorsportsValidator.DriverProfile(), middleware.JWTMiddleware, motorsportsController.UpsertDriverProfile)
	driverGroup.Get("/me/matches", motorsportsValidator.Matches(), middleware.JWTMiddleware, motorsportsController.MyTeamMatches)
	driverGroup.Get("/:id", motorsportsController.GetDriver)
	driverGroup.Post("/:id/endorse", motorsportsValidator.Endorse(), middleware.JWTMiddleware, motorsportsController.EndorseDriver)
	driverGroup.Get("/:id/endorsements", motorsportsController.ListEndorsements)

	teamGroup := app.Group("/teams")

	teamGroup.Get("/", motorsportsValidator.Directory("recruiting"), motorsportsController.ListTeams)
	teamGroup.Post("/", motorsportsValidator.CreateTeam(), middleware.JWTMiddleware, motorsportsController.CreateTeam)
	teamGroup.Get("/:id", motorsportsController.GetTeam)
	teamGroup.Put("/:id", motorsportsValidator.UpdateTeam(), middleware.JWTMiddleware, motorsportsController.UpdateTeam)
	teamGroup.Delete("/:id", middleware.JWTMiddleware, motorsportsController.DeleteTeam)
	teamGroup.Get("/:id/matches", motorsportsValidator.Matches(), middleware.JWTMiddleware, motorsportsController.TeamMatches)
}
