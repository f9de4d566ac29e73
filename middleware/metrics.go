package middleware

import (
	"time"

	"paddock/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Metrics records request count and latency per matched route.
func Metrics(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	metrics.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
	return err
}

// MetricsHandler exposes the registry in the Prometheus text format.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(metrics.Handler())
}
