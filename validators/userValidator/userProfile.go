package userValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Mobile *string `json:"mobile" validate:"omitempty,numeric,min=7,max=15"`
	Bio    *string `json:"bio" validate:"omitempty,max=2000"`
	City   *string `json:"city" validate:"omitempty,max=80"`
	State  *string `json:"state" validate:"omitempty,max=80"`
}

func UpdateProfile() fiber.Handler {
	return validators.Body("validatedProfile", func(r *UpdateProfileRequest, errors map[string]string) {
		if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
			errors["name"] = "name must not be blank!"
		}
	})
}
