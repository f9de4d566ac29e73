package middleware

import (
	"fmt"
	"strconv"

	"paddock/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, apperrors.ErrBadRequest)
	}
	return uint(id), nil
}

// CurrentRole returns the role claim of the caller.
func CurrentRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}
