package reservationValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateReservationRequest struct {
	VehicleID uint   `json:"vehicleId" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Message   string `json:"message" validate:"max=1000"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func CreateReservation() fiber.Handler {
	return validators.Body("validatedReservation", func(r *CreateReservationRequest, errors map[string]string) {
		r.Message = strings.TrimSpace(r.Message)
		if _, bad := errors["startDate"]; bad {
			return
		}
		if _, bad := errors["endDate"]; bad {
			return
		}
		// same layout, so string order is date order
		if r.EndDate < r.StartDate {
			errors["endDate"] = "endDate must not be before startDate!"
		}
	})
}

// Reason is shared by decline and cancel; the body is optional.
func Reason() fiber.Handler {
	return validators.Body("validatedReason", func(r *ReasonRequest, _ map[string]string) {
		r.Reason = strings.TrimSpace(r.Reason)
	})
}

func ListReservations() fiber.Handler {
	return validators.Query("validatedPage", func(r *validators.PageQuery, errors map[string]string) {
		switch r.Status {
		case "", "pending", "confirmed", "declined", "cancelled", "completed":
		default:
			errors["status"] = "status must be one of: pending, confirmed, declined, cancelled, completed!"
		}
	})
}
