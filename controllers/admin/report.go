package adminController

import (
	"errors"
	"fmt"

	"paddock/apperrors"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/models/motorsports"
	adminValidator "paddock/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// reportTargetOwner returns the member behind a report target.
func reportTargetOwner(db *gorm.DB, targetType string, targetID uint) (uint, error) {
	var (
		owner uint
		err   error
	)
	switch targetType {
	case models.ReportTargetUser:
		var u models.User
		err = db.Where("id = ? AND is_deleted = ?", targetID, false).First(&u).Error
		owner = u.ID
	case models.ReportTargetVehicle:
		var v models.Vehicle
		err = db.Where("id = ? AND is_deleted = ?", targetID, false).First(&v).Error
		owner = v.OwnerID
	case models.ReportTargetDriver:
		var d motorsports.DriverProfile
		err = db.Where("id = ? AND is_deleted = ?", targetID, false).First(&d).Error
		owner = d.UserID
	case models.ReportTargetTeam:
		var t motorsports.TeamProfile
		err = db.Where("id = ? AND is_deleted = ?", targetID, false).First(&t).Error
		owner = t.OwnerID
	default:
		return 0, fmt.Errorf("report target %q: %w", targetType, apperrors.ErrBadRequest)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%s %d: %w", targetType, targetID, apperrors.ErrNotFound)
	}
	return owner, err
}

func CreateReport(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedReport").(*adminValidator.CreateReportRequest)
	db := database.Database.Db

	owner, err := reportTargetOwner(db, reqData.TargetType, reqData.TargetID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Reported item not found!")
	}
	if owner == userId {
		return middleware.ErrorResponse(c, apperrors.ErrSelfAction, "You cannot report yourself!")
	}

	var open int64
	if err := db.Model(&models.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			userId, reqData.TargetType, reqData.TargetID, models.ReportPending).
		Count(&open).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	if open > 0 {
		return middleware.ErrorResponse(c, apperrors.ErrDuplicate, "You already reported this!")
	}

	report := models.Report{
		ReporterID:  userId,
		TargetType:  reqData.TargetType,
		TargetID:    reqData.TargetID,
		Reason:      reqData.Reason,
		Description: reqData.Description,
		Status:      models.ReportPending,
	}
	if err := db.Create(&report).Error; err != nil {
		logger.Log.Error("error creating report", logger.Uint("reporterId", userId), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit report!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Report submitted.", report)
}

func UpdateReport(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid report id!")
	}
	reqData := c.Locals("validatedReport").(*adminValidator.UpdateReportRequest)
	db := database.Database.Db

	var report models.Report
	if err := db.First(&report, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Report not found!", nil)
	}

	if err := db.Model(&models.Report{}).Where("id = ?", report.ID).Updates(map[string]interface{}{
		"status":     reqData.Status,
		"admin_note": reqData.Note,
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	db.First(&report, report.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Report updated.", report)
}
