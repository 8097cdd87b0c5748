package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"organizer-api/internal/logging"
	"organizer-api/internal/metrics"
)

// RequestLogger logs every request through zerolog and records it in the
// HTTP metrics. Metrics are labelled by route pattern, not raw path.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler pick the status before we read it
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = logging.Logger().Error()
		case status >= fiber.StatusBadRequest:
			ev = logging.Logger().Warn()
		default:
			ev = logging.Logger().Info()
		}
		ev.Int("status", status).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Dur("latency", latency).
			Msg("request")

		metrics.RecordHTTPRequest(c.Method(), c.Route().Path, status, latency)
		return nil
	}
}
