package adminController

import (
	"strings"

	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"
	adminValidator "paddock/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func UserList(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUserList").(*adminValidator.UserListQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 20, 100)

	query := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if reqData.Q != "" {
		like := "%" + strings.ToLower(reqData.Q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	users := []models.User{}
	if err := query.Order("id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", fiber.Map{
		"users":      users,
		"pagination": page.Meta(total),
	})
}

// BlockUser suspends or restores an account. An admin block has no end date.
func BlockUser(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid user id!")
	}
	reqData := c.Locals("validatedBlock").(*adminValidator.BlockUserRequest)
	db := database.Database.Db

	if id == middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot block yourself!", nil)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"is_blocked":            *reqData.Blocked,
		"blocked_until":         nil,
		"failed_login_attempts": 0,
	}).Error; err != nil {
		logger.Log.Error("error blocking user", logger.Uint("userId", user.ID), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	message := "User unblocked."
	if *reqData.Blocked {
		message = "User blocked."
	}
	db.First(&user, user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, user)
}

func ListReports(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 20, 100)

	query := database.Database.Db.Model(&models.Report{})
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	reports := []models.Report{}
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&reports).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reports.", fiber.Map{
		"reports":    reports,
		"pagination": page.Meta(total),
	})
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users                int64            `json:"users"`
	ActiveVehicles       int64            `json:"activeVehicles"`
	ReservationsByStatus map[string]int64 `json:"reservationsByStatus"`
	OpenDisputes         int64            `json:"openDisputes"`
	PendingReports       int64            `json:"pendingReports"`
	GrossBookingCents    int64            `json:"grossBookingCents"`
}

func GetStats(c *fiber.Ctx) error {
	db := database.Database.Db
	stats := Stats{ReservationsByStatus: map[string]int64{}}

	for _, status := range []string{
		models.ReservationPending, models.ReservationConfirmed, models.ReservationDeclined,
		models.ReservationCancelled, models.ReservationCompleted,
	} {
		stats.ReservationsByStatus[status] = 0
	}

	var rows []struct {
		Status string
		Total  int64
	}
	err := db.Model(&models.Reservation{}).Select("status, COUNT(*) AS total").
		Where("is_deleted = ?", false).Group("status").Scan(&rows).Error
	if err == nil {
		for _, row := range rows {
			stats.ReservationsByStatus[row.Status] = row.Total
		}
		err = db.Model(&models.User{}).Where("is_deleted = ?", false).Count(&stats.Users).Error
	}
	if err == nil {
		err = db.Model(&models.Vehicle{}).Where("is_deleted = ? AND is_active = ?", false, true).Count(&stats.ActiveVehicles).Error
	}
	if err == nil {
		err = db.Model(&models.Dispute{}).Where("status = ? AND is_deleted = ?", models.DisputeOpen, false).Count(&stats.OpenDisputes).Error
	}
	if err == nil {
		err = db.Model(&models.Report{}).Where("status = ?", models.ReportPending).Count(&stats.PendingReports).Error
	}
	if err == nil {
		err = db.Model(&models.Reservation{}).Select("COALESCE(SUM(total_cents), 0)").
			Where("status = ? AND is_deleted = ?", models.ReservationCompleted, false).
			Scan(&stats.GrossBookingCents).Error
	}
	if err != nil {
		logger.Log.Error("error building admin stats", logger.Error(err))
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Platform stats.", stats)
}
