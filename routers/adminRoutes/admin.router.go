package adminRoutes

import (
	adminController "paddock/controllers/admin"
	disputeController "paddock/controllers/dispute"
	"paddock/middleware"
	"paddock/models"
	adminValidator "paddock/validators/admin"
	disputeValidator "paddock/validators/dispute"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	app.Post("/reports", adminValidator.CreateReport(), middleware.JWTMiddleware, adminController.CreateReport)

	isAdmin := middleware.RequireRole(models.RoleAdmin)
	adminGroup := app.Group("/admin")

	adminGroup.Get("/stats", middleware.JWTMiddleware, isAdmin, adminController.GetStats)
	adminGroup.Get("/users", adminValidator.UserList(), middleware.JWTMiddleware, isAdmin, adminController.UserList)
	adminGroup.Patch("/users/:id/block", adminValidator.BlockUser(), middleware.JWTMiddleware, isAdmin, adminController.BlockUser)
	adminGroup.Get("/reports", adminValidator.ListReports(), middleware.JWTMiddleware, isAdmin, adminController.ListReports)
	adminGroup.Patch("/reports/:id", adminValidator.UpdateReport(), middleware.JWTMiddleware, isAdmin, adminController.UpdateReport)
	adminGroup.Get("/disputes", disputeValidator.ListDisputes(), middleware.JWTMiddleware, isAdmin, disputeController.AdminListDisputes)
	adminGroup.Patch("/disputes/:id/resolve", disputeValidator.ResolveDispute(), middleware.JWTMiddleware, isAdmin, disputeController.ResolveDispute)
}
