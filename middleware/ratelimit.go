package middleware

import (
	"fmt"
	"time"

	"paddock/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit throttles requests per user, falling back to the client IP for
// anonymous callers.
func RateLimit() fiber.Handler {
	cfg := config.AppConfig
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID := CurrentUserID(c); userID != 0 {
				return fmt.Sprintf("user:%d", userID)
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return JsonResponse(c, fiber.StatusTooManyRequests, false, "Too many requests, slow down!", nil)
		},
	})
}
