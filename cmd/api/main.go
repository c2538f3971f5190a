package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-ai/internal/bootstrap"
	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/internal/handler"
	"github.com/noah-isme/gema-ai/internal/middleware"
	"github.com/noah-isme/gema-ai/internal/router"
	"github.com/noah-isme/gema-ai/internal/service"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	resources, err := bootstrap.Build(startupCtx, cfg, ai.NewClient, logger)
	cancel()
	if err != nil {
		var configErr *ai.ConfigurationError
		if errors.As(err, &configErr) {
			logger.Fatal().Err(err).Msg("invalid ai configuration")
		}
		logger.Fatal().Err(err).Msg("failed to initialise ai orchestrator")
	}
	defer resources.Close()

	aiService := service.NewAIService(resources.Orchestrator, service.NewValidator(), logger)
	aiHandler := handler.NewAIHandler(aiService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:         &logger,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AIHandler: aiHandler,
		Providers: resources.Orchestrator.ProviderCount,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, resources, logger)
}

// waitForShutdown blocks until SIGINT or SIGTERM. SIGHUP reloads the provider list.
func waitForShutdown(app *fiber.App, resources *bootstrap.Resources, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	for {
		select {
		case <-reload:
			if err := resources.Reload(config.Load, ai.NewClient, logger); err != nil {
				logger.Error().Err(err).Msg("provider reload failed, keeping current providers")
			}
		case <-shutdownCtx.Done():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(ctx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
			}

			logger.Info().Msg("server stopped")
			return
		}
	}
}
