package ai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache shares cached payloads across API instances. Redis owns expiry;
// read or write failures degrade to a cache miss.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	logger zerolog.Logger
}

// NewRedisCache wraps client. prefix namespaces the keys, e.g. "gema:".
func NewRedisCache(client redis.Cmdable, prefix string, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "ai_redis_cache").Logger(),
	}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (any, bool) {
	raw, err := c.client.Get(ctx, c.prefix+fingerprint).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("failed to read ai cache")
		}
		return nil, false
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("discarding undecodable ai cache entry")
		return nil, false
	}
	return payload, true
}

func (c *RedisCache) Put(ctx context.Context, fingerprint string, payload any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("failed to encode ai cache entry")
		return
	}
	if err := c.client.Set(ctx, c.prefix+fingerprint, raw, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("failed to store ai cache entry")
	}
}
