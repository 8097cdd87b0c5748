package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"organizer-api/internal/config"
	"organizer-api/internal/metrics"
)

// RateLimit returns configured rate limiting middleware
func RateLimit() fiber.Handler {
	cfg := config.AppConfig.Server
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitReqs,
		Expiration: time.Duration(cfg.RateLimitWindow) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// API key + IP
			return c.Get("X-API-Key") + "-" + c.IP()
		},
		LimitReached: limitReached("Rate limit exceeded", "RATE_LIMIT_EXCEEDED"),
	})
}

// AnalyzeRateLimit is the stricter per-minute limit in front of the model.
func AnalyzeRateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AppConfig.Server.AnalyzeLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Get("X-API-Key") + "-analyze-" + c.IP()
		},
		LimitReached: limitReached("Analyze rate limit exceeded", "ANALYZE_RATE_LIMIT_EXCEEDED"),
	})
}

func limitReached(message, code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.RecordRateLimitHit()
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"message": message,
			"error": fiber.Map{
				"code":    code,
				"details": "Too many requests, please try again later",
			},
		})
	}
}
