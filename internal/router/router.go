package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/internal/handler"
	"github.com/noah-isme/gema-ai/internal/middleware"
	"github.com/noah-isme/gema-ai/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AIHandler *handler.AIHandler
	// Providers reports how many providers are currently registered.
	Providers func() int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Providers))

	if deps.AIHandler != nil {
		aiGroup := api.Group("/ai", middleware.RateLimit("ai", cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.AIHandler.Register(aiGroup)
	}

	app.Get("/metrics", observability.MetricsHandler())
}
