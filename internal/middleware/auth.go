package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"organizer-api/internal/config"
	"organizer-api/internal/models"
	"organizer-api/internal/services"
)

// UserContext holds what the caller asked for beyond the request body:
// a remote host to organize over SFTP, or nothing for the local disk.
type UserContext struct {
	SSHConfig *services.SSHConfig
	IsRemote  bool
}

// Auth middleware validates the API key and extracts SSH details from headers
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.NewErrorResponse("Unauthorized", "AUTH_REQUIRED", "API key is required"),
			)
		}

		if apiKey != config.AppConfig.Server.APIKey {
			return c.Status(fiber.StatusUnauthorized).JSON(
				models.NewErrorResponse("Unauthorized", "INVALID_API_KEY", "Invalid API key"),
			)
		}

		userCtx := &UserContext{}

		sshHost := c.Get("X-Ssh-Host")
		sshKey := c.Get("X-Ssh-Key")
		if sshHost != "" && sshKey != "" {
			sshPort := c.Get("X-Ssh-Port")
			if sshPort == "" {
				sshPort = "22"
			}
			sshUsername := c.Get("X-Ssh-Username")
			if sshUsername == "" {
				sshUsername = "root"
			}

			userCtx.SSHConfig = &services.SSHConfig{
				Host:       sshHost,
				Port:       sshPort,
				Username:   sshUsername,
				PrivateKey: normalizeKey(sshKey),
			}
			userCtx.IsRemote = true
		}

		c.Locals("user", userCtx)

		return c.Next()
	}
}

// normalizeKey turns a header-safe private key back into PEM. Headers
// can't carry newlines, so both a literal \n and URL-encoded %0A are accepted.
func normalizeKey(key string) string {
	key = strings.ReplaceAll(key, "\\n", "\n")
	key = strings.ReplaceAll(key, "%0A", "\n")
	key = strings.ReplaceAll(key, "%0a", "\n")
	return strings.TrimSpace(key)
}

// GetUserContext retrieves user context from fiber context
func GetUserContext(c *fiber.Ctx) *UserContext {
	if user, ok := c.Locals("user").(*UserContext); ok {
		return user
	}
	return nil
}
