package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Providers   int       `json:"providers"`
	Cache       string    `json:"cache"`
}

// HealthCheck returns a handler that reports application health information.
// providers is consulted on every call so registry reloads are reflected.
func HealthCheck(cfg config.Config, providers func() int) fiber.Handler {
	cache := "disabled"
	if cfg.AI.CacheEnabled {
		cache = cfg.AI.CacheBackend
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Cache:       cache,
		}
		if providers != nil {
			payload.Providers = providers()
		}

		return utils.OK(c, payload, "service healthy", nil)
	}
}
