package vehicleController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paddock/apperrors"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	vehicleValidator "paddock/validators/vehicle"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	geocodeTimeout      = 5 * time.Second
	availabilityHorizon = 90
)

// geocode fills in coordinates for the listing. Failures only log.
func geocode(ctx context.Context, v *models.Vehicle) {
	if !utils.DefaultGeocoder.Configured() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	lat, lng, err := utils.DefaultGeocoder.Geocode(ctx, v.LocationQuery())
	if err != nil {
		logger.Log.Warning("geocoding failed", logger.Uint("vehicleId", v.ID), logger.String("query", v.LocationQuery()), logger.Error(err))
		return
	}
	v.Latitude, v.Longitude = lat, lng
}

// findOwnedVehicle loads a live vehicle and checks the caller owns it.
func findOwnedVehicle(db *gorm.DB, id, userID uint) (models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vehicle, fmt.Errorf("vehicle %d: %w", id, apperrors.ErrNotFound)
		}
		return vehicle, err
	}
	if vehicle.OwnerID != userID {
		return vehicle, fmt.Errorf("vehicle %d: %w", id, apperrors.ErrForbidden)
	}
	return vehicle, nil
}

func CreateVehicle(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedVehicle").(*vehicleValidator.CreateVehicleRequest)

	vehicle := models.Vehicle{
		OwnerID:        userId,
		Title:          reqData.Title,
		Description:    reqData.Description,
		Make:           reqData.Make,
		VehicleModel:   reqData.Model,
		Year:           reqData.Year,
		Category:       reqData.Category,
		Transmission:   reqData.Transmission,
		Horsepower:     reqData.Horsepower,
		DailyRateCents: reqData.DailyRateCents,
		MinRentalDays:  reqData.MinRentalDays,
		TrackReady:     reqData.TrackReady,
		City:           reqData.City,
		State:          reqData.State,
		Address:        reqData.Address,
		Features:       datatypes.JSONSlice[string](reqData.Features),
		Images:         datatypes.JSONSlice[string]{},
		IsActive:       true,
	}
	if vehicle.Features == nil {
		vehicle.Features = datatypes.JSONSlice[string]{}
	}

	if reqData.Latitude != nil {
		vehicle.Latitude, vehicle.Longitude = *reqData.Latitude, *reqData.Longitude
	} else {
		geocode(c.UserContext(), &vehicle)
	}

	if err := database.Database.Db.Create(&vehicle).Error; err != nil {
		logger.Log.Error("error creating vehicle", logger.Uint("ownerId", userId), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create listing!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Listing created successfully.", vehicle)
}

func UpdateVehicle(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	reqData := c.Locals("validatedVehicle").(*vehicleValidator.UpdateVehicleRequest)
	db := database.Database.Db

	vehicle, err := findOwnedVehicle(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	updates := map[string]interface{}{}
	setString := func(column string, value *string, field *string) {
		if value != nil {
			updates[column] = *value
			*field = *value
		}
	}
	setString("title", reqData.Title, &vehicle.Title)
	setString("description", reqData.Description, &vehicle.Description)
	setString("make", reqData.Make, &vehicle.Make)
	setString("model", reqData.Model, &vehicle.VehicleModel)
	setString("category", reqData.Category, &vehicle.Category)
	setString("transmission", reqData.Transmission, &vehicle.Transmission)

	locationChanged := false
	for column, pair := range map[string][2]*string{
		"city":    {reqData.City, &vehicle.City},
		"state":   {reqData.State, &vehicle.State},
		"address": {reqData.Address, &vehicle.Address},
	} {
		if pair[0] != nil && *pair[0] != *pair[1] {
			locationChanged = true
		}
		setString(column, pair[0], pair[1])
	}

	if reqData.Year != nil {
		updates["year"] = *reqData.Year
	}
	if reqData.Horsepower != nil {
		updates["horsepower"] = *reqData.Horsepower
	}
	if reqData.DailyRateCents != nil {
		updates["daily_rate_cents"] = *reqData.DailyRateCents
	}
	if reqData.MinRentalDays != nil {
		updates["min_rental_days"] = *reqData.MinRentalDays
	}
	if reqData.TrackReady != nil {
		updates["track_ready"] = *reqData.TrackReady
	}
	if reqData.Features != nil {
		updates["features"] = datatypes.JSONSlice[string](*reqData.Features)
	}

	if reqData.Latitude != nil {
		updates["latitude"], updates["longitude"] = *reqData.Latitude, *reqData.Longitude
	} else if locationChanged {
		vehicle.Latitude, vehicle.Longitude = 0, 0
		geocode(c.UserContext(), &vehicle)
		updates["latitude"], updates["longitude"] = vehicle.Latitude, vehicle.Longitude
	}

	if len(updates) > 0 {
		if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Updates(updates).Error; err != nil {
			logger.Log.Error("error updating vehicle", logger.Uint("vehicleId", vehicle.ID), logger.Error(err))
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update listing!", nil)
		}
	}

	db.First(&vehicle, vehicle.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Listing updated successfully.", vehicle)
}

func DeleteVehicle(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	db := database.Database.Db

	vehicle, err := findOwnedVehicle(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	var active int64
	if err := db.Model(&models.Reservation{}).
		Where("vehicle_id = ? AND status IN ? AND is_deleted = ?", vehicle.ID, models.ActiveReservationStatuses, false).
		Count(&active).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	if active > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Listing has pending or confirmed reservations!", nil)
	}

	if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete listing!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Listing deleted successfully.", nil)
}

func SetVehicleStatus(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	reqData := c.Locals("validatedStatus").(*vehicleValidator.StatusRequest)
	db := database.Database.Db

	vehicle, err := findOwnedVehicle(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("is_active", *reqData.IsActive).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update listing status!", nil)
	}
	vehicle.IsActive = *reqData.IsActive

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Listing status updated.", vehicle)
}

func AddVehicleImage(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	db := database.Database.Db

	vehicle, err := findOwnedVehicle(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	if len(vehicle.Images) >= models.MaxVehicleImages {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, fmt.Sprintf("A listing can have at most %d images!", models.MaxVehicleImages), nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Image file is required!", nil)
	}

	url, err := utils.SaveImage(file, fmt.Sprintf("vehicles/%d", vehicle.ID))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	images := append(datatypes.JSONSlice[string]{}, vehicle.Images...)
	images = append(images, url)
	if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("images", images).Error; err != nil {
		_ = utils.DeleteImage(url)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save image!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Image uploaded.", fiber.Map{"url": url, "images": images})
}

func RemoveVehicleImage(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	reqData := c.Locals("validatedImage").(*vehicleValidator.ImageRequest)
	db := database.Database.Db

	vehicle, err := findOwnedVehicle(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	images := datatypes.JSONSlice[string]{}
	found := false
	for _, img := range vehicle.Images {
		if img == reqData.URL {
			found = true
			continue
		}
		images = append(images, img)
	}
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Image not found on this listing!", nil)
	}

	if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("images", images).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove image!", nil)
	}
	if err := utils.DeleteImage(reqData.URL); err != nil {
		logger.Log.Warning("failed to remove image file", logger.String("url", reqData.URL), logger.Error(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Image removed.", fiber.Map{"images": images})
}

func GetVehicle(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}

	var vehicle models.Vehicle
	if err := database.Database.Db.Preload("Owner").
		Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Listing not found!", nil)
	}
	if !vehicle.IsActive && vehicle.OwnerID != middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Listing not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Listing details.", fiber.Map{
		"vehicle": vehicle,
		"owner":   vehicle.Owner.Public(),
	})
}

// BookedRange is a block of days the calendar shows as taken.
type BookedRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

func GetAvailability(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	reqData := c.Locals("validatedAvailability").(*vehicleValidator.AvailabilityQuery)
	db := database.Database.Db

	var vehicle models.Vehicle
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Listing not found!", nil)
	}

	from := utils.Today(time.Now())
	if reqData.From != "" {
		from, _ = utils.ParseDay(reqData.From)
	}
	to := from.AddDate(0, 0, availabilityHorizon)
	if reqData.To != "" {
		to, _ = utils.ParseDay(reqData.To)
	}

	var reservations []models.Reservation
	if err := db.Where("vehicle_id = ? AND status IN ? AND is_deleted = ? AND start_date <= ? AND end_date >= ?",
		vehicle.ID, models.BookedReservationStatuses, false, to, from).
		Order("start_date ASC").Find(&reservations).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	booked := make([]BookedRange, 0, len(reservations))
	for _, r := range reservations {
		booked = append(booked, BookedRange{
			StartDate: r.StartDate.Format(utils.DayLayout),
			EndDate:   r.EndDate.Format(utils.DayLayout),
			Status:    r.Status,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Availability.", fiber.Map{
		"vehicleId":     vehicle.ID,
		"from":          from.Format(utils.DayLayout),
		"to":            to.Format(utils.DayLayout),
		"minRentalDays": vehicle.MinRentalDays,
		"booked":        booked,
	})
}

func MyVehicles(c *fiber.Ctx) error {
	vehicles := []models.Vehicle{}
	if err := database.Database.Db.
		Where("owner_id = ? AND is_deleted = ?", middleware.CurrentUserID(c), false).
		Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "My listings.", vehicles)
}
