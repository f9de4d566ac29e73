package reviewValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateReviewRequest struct {
	ReservationID uint   `json:"reservationId" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Comment       string `json:"comment" validate:"max=2000"`
}

type ReplyRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}

func CreateReview() fiber.Handler {
	return validators.Body("validatedReview", func(r *CreateReviewRequest, _ map[string]string) {
		r.Comment = strings.TrimSpace(r.Comment)
	})
}

func Reply() fiber.Handler {
	return validators.Body("validatedReply", func(r *ReplyRequest, errors map[string]string) {
		r.Reply = strings.TrimSpace(r.Reply)
		if _, bad := errors["reply"]; !bad && r.Reply == "" {
			errors["reply"] = "reply is required!"
		}
	})
}
