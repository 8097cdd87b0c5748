// Package server assembles the fiber application: middleware, routes and
// the handlers behind them.
package server

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"organizer-api/internal/config"
	"organizer-api/internal/handlers"
	"organizer-api/internal/metrics"
	"organizer-api/internal/middleware"
	"organizer-api/internal/models"
	"organizer-api/internal/services"
)

const Version = "1.0.0"

// Deps are the long-lived objects the routes are served from
type Deps struct {
	Organizer *services.OrganizerService
	Settings  handlers.SettingsStore
	Progress  *models.ProgressStore
}

// New builds the application. config.AppConfig must be set.
func New(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		AppName:               "Organizer API v" + Version,
		ReadTimeout:           time.Second * time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout:          time.Second * time.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:           time.Second * time.Duration(cfg.Server.IdleTimeout),
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS())

	// Health check and metrics (no auth)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": Version,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	orgHandler := handlers.NewOrganizerHandler(deps.Organizer, deps.Settings, deps.Progress)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings)

	// WebSocket for execution progress; browsers can't set X-API-Key on
	// an upgrade, so this sits outside the auth group like the health check.
	app.Use("/api/v1/folders/execute/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/v1/folders/execute/ws/:id", websocket.New(orgHandler.WebSocketProgress))

	api := app.Group("/api/v1")
	api.Use(middleware.Auth())
	api.Use(middleware.RateLimit())

	folders := api.Group("/folders")
	folders.Post("/scan", orgHandler.Scan)
	folders.Post("/analyze", middleware.AnalyzeRateLimit(), orgHandler.Analyze)
	folders.Post("/execute", orgHandler.Execute)
	folders.Get("/execute/progress/:id", orgHandler.Progress)

	plans := api.Group("/plans")
	plans.Post("/move-item", orgHandler.MoveItem)
	plans.Post("/summary", orgHandler.Summary)

	usage := api.Group("/usage")
	usage.Get("/metrics", orgHandler.Metrics)
	usage.Get("/history", orgHandler.History)

	settings := api.Group("/settings")
	settings.Get("/", settingsHandler.List)
	settings.Get("/:key", settingsHandler.Get)
	settings.Put("/:key", settingsHandler.Put)

	return app
}
