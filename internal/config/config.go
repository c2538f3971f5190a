package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProviderConfig is one text-generation endpoint as written in configuration.
type ProviderConfig struct {
	ID              string        `mapstructure:"id"`
	Kind            string        `mapstructure:"kind"`
	Priority        int           `mapstructure:"priority"`
	Endpoint        string        `mapstructure:"endpoint"`
	Credential      string        `mapstructure:"credential"`
	Model           string        `mapstructure:"model"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Temperature     float32       `mapstructure:"temperature"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// AIConfig holds the orchestration knobs.
type AIConfig struct {
	CacheEnabled  bool
	CacheBackend  string
	CacheTTL      time.Duration
	CacheCapacity int
	RetryPasses   int
	RetryBackoff  time.Duration
	Timeout       time.Duration
	Providers     []ProviderConfig
}

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	LogLevel        string
	RequestTimeout  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisURL        string
	NATSURL         string
	NATSSubject     string
	AI              AIConfig
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables, an optional .env
// file and the optional YAML file named by GEMA_CONFIG_FILE.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "GEMA AI")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.request_timeout", "90s")
	v.SetDefault("app.rate_limit_max", 30)
	v.SetDefault("app.rate_limit_window", "1m")
	v.SetDefault("nats.subject", "gema")
	v.SetDefault("ai.cache_enabled", true)
	v.SetDefault("ai.cache_backend", CacheBackendMemory)
	v.SetDefault("ai.cache_ttl", "1h")
	v.SetDefault("ai.cache_capacity", 1024)
	v.SetDefault("ai.retry_passes", 1)
	v.SetDefault("ai.retry_backoff", "0s")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("openai.model", "gpt-4o-mini")

	// The legacy single-provider variables are also read without the prefix.
	for key, env := range map[string]string{
		"deepseek.api_key":  "DEEPSEEK_API_KEY",
		"deepseek.base_url": "DEEPSEEK_BASE_URL",
		"deepseek.model":    "DEEPSEEK_MODEL",
		"openai.api_key":    "OPENAI_API_KEY",
		"openai.base_url":   "OPENAI_BASE_URL",
		"openai.model":      "OPENAI_MODEL",
	} {
		prefixed := "GEMA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{"app.request_timeout", "app.rate_limit_window", "ai.cache_ttl", "ai.retry_backoff", "ai.timeout"} {
		value, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = value
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		LogLevel:        v.GetString("app.log_level"),
		RequestTimeout:  durations["app.request_timeout"],
		RateLimitMax:    v.GetInt("app.rate_limit_max"),
		RateLimitWindow: durations["app.rate_limit_window"],
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		NATSSubject:     v.GetString("nats.subject"),
		AI: AIConfig{
			CacheEnabled:  v.GetBool("ai.cache_enabled"),
			CacheBackend:  strings.ToLower(v.GetString("ai.cache_backend")),
			CacheTTL:      durations["ai.cache_ttl"],
			CacheCapacity: v.GetInt("ai.cache_capacity"),
			RetryPasses:   v.GetInt("ai.retry_passes"),
			RetryBackoff:  durations["ai.retry_backoff"],
			Timeout:       durations["ai.timeout"],
		},
	}

	if err := v.UnmarshalKey("ai.providers", &cfg.AI.Providers); err != nil {
		return Config{}, fmt.Errorf("invalid ai.providers: %w", err)
	}
	if len(cfg.AI.Providers) == 0 {
		cfg.AI.Providers = legacyProviders(v)
	}

	if err := cfg.AI.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// legacyProviders maps the single-provider variables onto the provider list:
// DeepSeek is tried first, OpenAI second.
func legacyProviders(v *viper.Viper) []ProviderConfig {
	var providers []ProviderConfig
	if key := v.GetString("deepseek.api_key"); key != "" {
		providers = append(providers, ProviderConfig{
			ID:         "deepseek",
			Kind:       "deepseek",
			Priority:   0,
			Endpoint:   v.GetString("deepseek.base_url"),
			Credential: key,
			Model:      v.GetString("deepseek.model"),
		})
	}
	if key := v.GetString("openai.api_key"); key != "" {
		providers = append(providers, ProviderConfig{
			ID:         "openai",
			Kind:       "openai",
			Priority:   1,
			Endpoint:   v.GetString("openai.base_url"),
			Credential: key,
			Model:      v.GetString("openai.model"),
		})
	}
	return providers
}

func (c *AIConfig) validate() error {
	if c.RetryPasses < 1 {
		return fmt.Errorf("ai.retry_passes must be at least 1, got %d", c.RetryPasses)
	}
	if c.CacheTTL <= 0 && c.CacheEnabled {
		return fmt.Errorf("ai.cache_ttl must be positive when caching is enabled")
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported ai.cache_backend %q", c.CacheBackend)
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 1024
	}
	for i := range c.Providers {
		if c.Providers[i].Timeout <= 0 {
			c.Providers[i].Timeout = c.Timeout
		}
	}
	return nil
}
