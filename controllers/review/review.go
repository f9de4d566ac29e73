package reviewController

import (
	"errors"
	"fmt"
	"time"

	"paddock/apperrors"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"
	reviewValidator "paddock/validators/review"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReviewItem is a review with the reviewer's public profile.
type ReviewItem struct {
	models.Review
	Reviewer models.PublicUser `json:"reviewer"`
}

func CreateReview(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedReview").(*reviewValidator.CreateReviewRequest)
	db := database.Database.Db

	var reservation models.Reservation
	if err := db.Where("id = ? AND is_deleted = ?", reqData.ReservationID, false).First(&reservation).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reservation not found!", nil)
	}
	if reservation.RenterID != userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the renter can review this rental!", nil)
	}
	if reservation.Status != models.ReservationCompleted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only completed rentals can be reviewed!", nil)
	}

	review := models.Review{
		ReservationID: reservation.ID,
		VehicleID:     reservation.VehicleID,
		ReviewerID:    userId,
		OwnerID:       reservation.OwnerID,
		Rating:        reqData.Rating,
		Comment:       reqData.Comment,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Review{}).Where("reservation_id = ?", reservation.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("reservation %d: %w", reservation.ID, apperrors.ErrDuplicate)
		}
		if err := tx.Omit("Reviewer").Create(&review).Error; err != nil {
			return err
		}
		return refreshVehicleRating(tx, reservation.VehicleID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return middleware.ErrorResponse(c, err, "This rental has already been reviewed!")
		}
		logger.Log.Error("error creating review", logger.Uint("reservationId", reservation.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted.", review)
}

// refreshVehicleRating recomputes the aggregate from the live reviews.
func refreshVehicleRating(tx *gorm.DB, vehicleID uint) error {
	var agg struct {
		Average float64
		Count   int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("vehicle_id = ? AND is_deleted = ?", vehicleID, false).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Vehicle{}).Where("id = ?", vehicleID).Updates(map[string]interface{}{
		"average_rating": utils.RoundRating(agg.Average),
		"review_count":   agg.Count,
	}).Error
}

func ReplyToReview(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid review id!")
	}
	reqData := c.Locals("validatedReply").(*reviewValidator.ReplyRequest)
	db := database.Database.Db

	var review models.Review
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&review).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}
	if review.OwnerID != middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the vehicle owner can reply!", nil)
	}
	if review.RepliedAt != nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already replied to this review!", nil)
	}

	result := db.Model(&models.Review{}).Where("id = ? AND replied_at IS NULL", review.ID).Updates(map[string]interface{}{
		"reply":      reqData.Reply,
		"replied_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return middleware.ErrorResponse(c, result.Error, "")
	}
	if result.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already replied to this review!", nil)
	}

	db.First(&review, review.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply posted.", review)
}

func VehicleReviews(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid vehicle id!")
	}
	db := database.Database.Db

	var vehicle models.Vehicle
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&vehicle).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Vehicle not found!", nil)
	}

	items, meta, err := pagedReviews(c, db.Where("vehicle_id = ?", vehicle.ID))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Vehicle reviews.", fiber.Map{
		"reviews":       items,
		"averageRating": vehicle.AverageRating,
		"reviewCount":   vehicle.ReviewCount,
		"pagination":    meta,
	})
}

// OwnerReviews lists reviews a member received on their listings.
func OwnerReviews(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid user id!")
	}
	db := database.Database.Db

	items, meta, err := pagedReviews(c, db.Where("owner_id = ?", id))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews received.", fiber.Map{
		"reviews":    items,
		"pagination": meta,
	})
}

func pagedReviews(c *fiber.Ctx, scope *gorm.DB) ([]ReviewItem, map[string]interface{}, error) {
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 10, 50)

	query := scope.Model(&models.Review{}).Where("is_deleted = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var reviews []models.Review
	if err := query.Preload("Reviewer").Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&reviews).Error; err != nil {
		return nil, nil, err
	}

	items := make([]ReviewItem, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, ReviewItem{Review: r, Reviewer: r.Reviewer.Public()})
	}
	return items, page.Meta(total), nil
}
