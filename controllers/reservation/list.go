package reservationController

import (
	"paddock/database"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

func MyReservations(c *fiber.Ctx) error {
	return listReservations(c, "renter_id", "My reservations.")
}

func OwnerReservations(c *fiber.Ctx) error {
	return listReservations(c, "owner_id", "Reservations for my vehicles.")
}

func listReservations(c *fiber.Ctx, column, message string) error {
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 10, 50)
	db := database.Database.Db

	query := db.Model(&models.Reservation{}).Where(column+" = ? AND is_deleted = ?", middleware.CurrentUserID(c), false)
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	reservations := []models.Reservation{}
	if err := query.Preload("Vehicle").Preload("Renter").Preload("Owner").
		Order("start_date DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).
		Find(&reservations).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	items := make([]ReservationDetail, 0, len(reservations))
	for _, r := range reservations {
		items = append(items, reservationDetail(r))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"reservations": items,
		"pagination":   page.Meta(total),
	})
}
