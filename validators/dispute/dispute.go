package disputeValidator

import (
	"strings"

	"paddock/models"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateDisputeRequest struct {
	ReservationID uint   `json:"reservationId" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Description   string `json:"description" validate:"required,min=10,max=5000"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required,min=3,max=5000"`
}

func CreateDispute() fiber.Handler {
	return validators.Body("validatedDispute", func(r *CreateDisputeRequest, errors map[string]string) {
		r.Category = strings.ToLower(strings.TrimSpace(r.Category))
		r.Description = strings.TrimSpace(r.Description)
		if _, bad := errors["category"]; bad {
			return
		}
		for _, category := range models.DisputeCategories {
			if r.Category == category {
				return
			}
		}
		errors["category"] = "category must be one of: " + strings.Join(models.DisputeCategories, ", ") + "!"
	})
}

func ResolveDispute() fiber.Handler {
	return validators.Body("validatedResolution", func(r *ResolveDisputeRequest, _ map[string]string) {
		r.Resolution = strings.TrimSpace(r.Resolution)
	})
}

func ListDisputes() fiber.Handler {
	return validators.Query("validatedPage", func(r *validators.PageQuery, errors map[string]string) {
		switch r.Status {
		case "", models.DisputeOpen, models.DisputeResolved:
		default:
			errors["status"] = "status must be one of: open, resolved!"
		}
	})
}
