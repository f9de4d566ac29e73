package vehicleController

import (
	"paddock/database"
	"paddock/middleware"
	"paddock/models"

	"github.com/gofiber/fiber/v2"
)

func AddFavorite(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	var vehicle models.Vehicle
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Listing not found!", nil)
	}

	favorite := models.Favorite{UserID: userId, VehicleID: vehicle.ID}
	if err := db.Where(models.Favorite{UserID: userId, VehicleID: vehicle.ID}).FirstOrCreate(&favorite).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Added to favorites.", fiber.Map{"vehicleId": vehicle.ID, "favorited": true})
}

func RemoveFavorite(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}

	// hard delete so the unique pair can be favorited again later
	if err := database.Database.Db.Unscoped().
		Where("user_id = ? AND vehicle_id = ?", middleware.CurrentUserID(c), id).
		Delete(&models.Favorite{}).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Removed from favorites.", fiber.Map{"vehicleId": id, "favorited": false})
}

func ListFavorites(c *fiber.Ctx) error {
	var favorites []models.Favorite
	if err := database.Database.Db.Preload("Vehicle").
		Where("user_id = ?", middleware.CurrentUserID(c)).
		Order("created_at DESC").Find(&favorites).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	vehicles := make([]models.Vehicle, 0, len(favorites))
	for _, f := range favorites {
		if f.Vehicle.ID == 0 || f.Vehicle.IsDeleted {
			continue
		}
		vehicles = append(vehicles, f.Vehicle)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Favorite listings.", vehicles)
}
