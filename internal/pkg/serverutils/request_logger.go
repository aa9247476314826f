package serverutils

import (
	"time"

	"idea-contract-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger writes one line per request once the response status is
// final. It must sit outside ErrorHandlerMiddleware to see mapped errors.
func RequestLogger(log logger.ILogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if id, ok := c.Locals("requestid").(string); ok {
			details["request_id"] = id
		}

		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			if err != nil {
				details["error"] = err.Error()
			}
			log.Error("HTTP", "Request failed", details)
		case status >= fiber.StatusBadRequest:
			log.Warn("HTTP", "Request rejected", details)
		default:
			log.Debug("HTTP", "Request served", details)
		}
		return err
	}
}
