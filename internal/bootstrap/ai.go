// Package bootstrap assembles the orchestrator and its collaborators from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-ai/internal/config"
	"github.com/noah-isme/gema-ai/internal/database"
	"github.com/noah-isme/gema-ai/internal/middleware"
	"github.com/noah-isme/gema-ai/internal/observability"
	"github.com/noah-isme/gema-ai/pkg/ai"
)

const redisCachePrefix = "gema:ai:"

// Resources owns the orchestrator and the connections it depends on.
type Resources struct {
	Orchestrator *ai.Orchestrator
	Redis        *redis.Client
	NATS         *nats.Conn
}

// Close releases external connections.
func (r *Resources) Close() {
	if r == nil {
		return
	}
	if r.NATS != nil {
		_ = r.NATS.Drain()
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}

// ProviderConfigs converts configured providers into registry entries.
func ProviderConfigs(cfg config.AIConfig) []ai.ProviderConfig {
	providers := make([]ai.ProviderConfig, 0, len(cfg.Providers))
	for _, provider := range cfg.Providers {
		providers = append(providers, ai.ProviderConfig{
			ID:              provider.ID,
			Priority:        provider.Priority,
			Kind:            provider.Kind,
			Endpoint:        provider.Endpoint,
			Credential:      provider.Credential,
			Model:           provider.Model,
			MaxOutputTokens: provider.MaxOutputTokens,
			Temperature:     provider.Temperature,
			Timeout:         provider.Timeout,
		})
	}
	return providers
}

// BuildRegistry creates provider clients for every configured provider.
func BuildRegistry(cfg config.AIConfig, factory ai.ClientFactory) (*ai.Registry, error) {
	if factory == nil {
		factory = ai.NewClient
	}
	return ai.BuildRegistry(ProviderConfigs(cfg), factory)
}

// Build wires the orchestrator. Redis is required when it backs the cache;
// NATS is optional and only logged when unreachable.
func Build(ctx context.Context, cfg config.Config, factory ai.ClientFactory, logger zerolog.Logger) (*Resources, error) {
	registry, err := BuildRegistry(cfg.AI, factory)
	if err != nil {
		return nil, &ai.ConfigurationError{Reason: err.Error()}
	}

	resources := &Resources{}

	var cache ai.Cache = ai.NoopCache{}
	if cfg.AI.CacheEnabled {
		switch cfg.AI.CacheBackend {
		case config.CacheBackendRedis:
			client, err := database.ConnectRedis(ctx, cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("ai cache: %w", err)
			}
			resources.Redis = client
			cache = ai.NewRedisCache(client, redisCachePrefix, logger)
		default:
			cache = ai.NewMemoryCache(cfg.AI.CacheCapacity)
		}
	}

	sinks := ai.MultiSink{ai.NewLogSink(logger), observability.NewAttemptMetrics()}
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("attempt events disabled")
		} else {
			resources.NATS = conn
			sinks = append(sinks, observability.NewAttemptPublisher(conn, cfg.NATSSubject, middleware.CorrelationIDFromContext, logger))
		}
	}

	orchestrator, err := ai.New(ai.Options{
		Registry: registry,
		Cache:    cache,
		CacheTTL: cfg.AI.CacheTTL,
		Sink:     sinks,
		Dispatch: ai.DispatcherConfig{
			RetryPasses:    cfg.AI.RetryPasses,
			DefaultTimeout: cfg.AI.Timeout,
			RetryBackoff:   cfg.AI.RetryBackoff,
		},
		Logger: logger,
	})
	if err != nil {
		resources.Close()
		return nil, err
	}
	resources.Orchestrator = orchestrator

	logger.Info().
		Int("providers", registry.Len()).
		Bool("cache_enabled", cfg.AI.CacheEnabled).
		Str("cache_backend", cfg.AI.CacheBackend).
		Int("retry_passes", cfg.AI.RetryPasses).
		Msg("ai orchestrator ready")
	if registry.IsEmpty() {
		logger.Warn().Msg("no ai providers configured, every request will be served from fallbacks")
	}

	return resources, nil
}

// Reload re-reads configuration and swaps the provider list in place.
// Cache and retry settings keep their startup values.
func (r *Resources) Reload(load func() (config.Config, error), factory ai.ClientFactory, logger zerolog.Logger) error {
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("reload configuration: %w", err)
	}
	registry, err := BuildRegistry(cfg.AI, factory)
	if err != nil {
		return fmt.Errorf("reload providers: %w", err)
	}
	if !r.Orchestrator.ReplaceRegistry(registry) {
		return fmt.Errorf("orchestrator does not support provider reload")
	}
	logger.Info().Int("providers", registry.Len()).Msg("ai providers reloaded")
	return nil
}
