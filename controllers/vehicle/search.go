package vehicleController

import (
	"paddock/database"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultListLimit = 12
	maxListLimit     = 50
)

// VehicleListItem is one search result.
type VehicleListItem struct {
	models.Vehicle
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// ListVehicles runs the browse pipeline: narrow in SQL on the indexed
// columns, then apply every filter, sort and paginate in memory.
func ListVehicles(c *fiber.Ctx) error {
	filter, errors := utils.ParseVehicleFilter(func(key string) string { return c.Query(key) })
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}
	page := utils.NewPagination(c.QueryInt("page", 1), c.QueryInt("limit", defaultListLimit), defaultListLimit, maxListLimit)

	db := database.Database.Db
	query := db.Model(&models.Vehicle{}).Where("is_active = ? AND is_deleted = ?", true, false)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("daily_rate_cents >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("daily_rate_cents <= ?", *filter.MaxPrice)
	}
	if filter.TrackReady {
		query = query.Where("track_ready = ?", true)
	}

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	unavailable := map[uint]bool{}
	if filter.HasDates() {
		var booked []uint
		if err := db.Model(&models.Reservation{}).
			Where("status IN ? AND is_deleted = ? AND start_date <= ? AND end_date >= ?",
				models.BookedReservationStatuses, false, *filter.EndDate, *filter.StartDate).
			Distinct("vehicle_id").Pluck("vehicle_id", &booked).Error; err != nil {
			return middleware.ErrorResponse(c, err, "")
		}
		for _, id := range booked {
			unavailable[id] = true
		}
	}

	hits := utils.FilterVehicles(vehicles, filter, unavailable)
	items := make([]VehicleListItem, 0, page.Limit)
	for _, h := range utils.PageVehicleHits(hits, page) {
		items = append(items, VehicleListItem{Vehicle: h.Vehicle, DistanceKm: h.DistanceKm})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Listings.", fiber.Map{
		"vehicles":   items,
		"pagination": page.Meta(int64(len(hits))),
		"facets":     utils.BuildVehicleFacets(hits),
	})
}
