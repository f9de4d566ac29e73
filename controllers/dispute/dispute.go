package disputeController

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
	disputeValidator "paddock/validators/dispute"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func OpenDispute(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedDispute").(*disputeValidator.CreateDisputeRequest)
	db := database.Database.Db

	var reservation models.Reservation
	if err := db.Where("id = ? AND is_deleted = ?", reqData.ReservationID, false).First(&reservation).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reservation not found!", nil)
	}
	if !reservation.IsParticipant(userId) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not part of this reservation!", nil)
	}
	if reservation.Status != models.ReservationCompleted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Disputes can only be opened on completed rentals!", nil)
	}

	dispute := models.Dispute{
		ReservationID: reservation.ID,
		OpenedBy:      userId,
		AgainstID:     reservation.Counterparty(userId),
		Category:      reqData.Category,
		Description:   reqData.Description,
		Status:        models.DisputeOpen,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Dispute{}).Where("reservation_id = ?", reservation.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("reservation %d: %w", reservation.ID, apperrors.ErrDuplicate)
		}
		return tx.Create(&dispute).Error
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return middleware.ErrorResponse(c, err, "A dispute already exists for this rental!")
		}
		logger.Log.Error("error opening dispute", logger.Uint("reservationId", reservation.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to open dispute!", nil)
	}

	var admins []models.User
	db.Where("role = ? AND is_deleted = ?", models.RoleAdmin, false).Find(&admins)
	for _, admin := range admins {
		utils.SendDisputeOpenedEmail(admin.Email, admin.Name, dispute.ID, reservation.ID, dispute.Category)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Dispute opened.", dispute)
}

func MyDisputes(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	scope := database.Database.Db.Where("(opened_by = ? OR against_id = ?)", userId, userId)
	return listDisputes(c, scope, "My disputes.")
}

func GetDispute(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid dispute id!")
	}
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	var dispute models.Dispute
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&dispute).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Dispute not found!", nil)
	}
	if !dispute.Involves(userId) {
		var caller models.User
		if err := db.Select("id", "role").First(&caller, userId).Error; err != nil || !caller.IsAdmin() {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not part of this dispute!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dispute details.", dispute)
}

// AdminListDisputes is mounted behind the admin role check.
func AdminListDisputes(c *fiber.Ctx) error {
	return listDisputes(c, database.Database.Db, "Disputes.")
}

func ResolveDispute(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid dispute id!")
	}
	reqData := c.Locals("validatedResolution").(*disputeValidator.ResolveDisputeRequest)
	db := database.Database.Db

	var dispute models.Dispute
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&dispute).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Dispute not found!", nil)
	}
	if dispute.Status != models.DisputeOpen {
		return middleware.ErrorResponse(c, apperrors.ErrInvalidTransition, "Dispute is already resolved!")
	}

	result := db.Model(&models.Dispute{}).Where("id = ? AND status = ?", dispute.ID, models.DisputeOpen).Updates(map[string]interface{}{
		"status":      models.DisputeResolved,
		"resolution":  reqData.Resolution,
		"resolved_by": middleware.CurrentUserID(c),
		"resolved_at": time.Now().UTC(),
	})
	if result.Error != nil {
		logger.Log.Error("error resolving dispute", logger.Uint("disputeId", dispute.ID), logger.Error(result.Error))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve dispute!", nil)
	}
	if result.RowsAffected == 0 {
		return middleware.ErrorResponse(c, apperrors.ErrInvalidTransition, "Dispute is already resolved!")
	}

	var parties []models.User
	db.Where("id IN ?", []uint{dispute.OpenedBy, dispute.AgainstID}).Find(&parties)
	for _, u := range parties {
		utils.SendDisputeResolvedEmail(u.Email, u.Name, dispute.ID, reqData.Resolution)
	}

	db.First(&dispute, dispute.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dispute resolved.", dispute)
}

func listDisputes(c *fiber.Ctx, scope *gorm.DB, message string) error {
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 10, 50)

	query := scope.Model(&models.Dispute{}).Where("is_deleted = ?", false)
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	disputes := []models.Dispute{}
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&disputes).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"disputes":   disputes,
		"pagination": page.Meta(total),
	})
}
