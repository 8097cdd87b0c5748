package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"organizer-api/internal/logging"
	"organizer-api/internal/models"
)

// SettingsStore is the persisted key-value settings table
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	LoadSettings(ctx context.Context) (models.Settings, error)
}

// SettingsHandler exposes the settings provider over HTTP. The API key is
// write-only: reads return it masked.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func displayValue(key, value string) string {
	if key == models.SettingAPIKey {
		return models.MaskSecret(value)
	}
	return value
}

// List handles GET /api/v1/settings
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	all, err := h.store.All(c.UserContext())
	if err != nil {
		return settingsError(c, err)
	}
	for k, v := range all {
		all[k] = displayValue(k, v)
	}
	return c.JSON(models.NewSuccessResponse("Settings", all))
}

// Get handles GET /api/v1/settings/:key
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	value, ok, err := h.store.Get(c.UserContext(), key)
	if err != nil {
		return settingsError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(
			models.NewErrorResponse("Not Found", models.CodeNotFound, "setting "+key+" is not set"),
		)
	}
	return c.JSON(models.NewSuccessResponse("Setting", fiber.Map{
		"key":   key,
		"value": displayValue(key, value),
	}))
}

// Put handles PUT /api/v1/settings/:key
func (h *SettingsHandler) Put(c *fiber.Ctx) error {
	key := c.Params("key")

	var req models.SettingRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := models.ValidateSetting(key, req.Value); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", models.CodeInvalidRequest, err.Error()),
		)
	}

	if err := h.store.Set(c.UserContext(), key, req.Value); err != nil {
		return settingsError(c, err)
	}
	logging.Logger().Info().Str("key", key).Msg("setting updated")

	return c.JSON(models.NewSuccessResponse("Setting saved", fiber.Map{
		"key":   key,
		"value": displayValue(key, req.Value),
	}))
}

func settingsError(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrUnknownSetting) {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.NewErrorResponse("Bad Request", models.CodeInvalidRequest, err.Error()),
		)
	}
	logging.Logger().Error().Err(err).Msg("settings store failed")
	return c.Status(fiber.StatusInternalServerError).JSON(
		models.NewErrorResponse("Internal Server Error", models.CodeInternalError, err.Error()),
	)
}
