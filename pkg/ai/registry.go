package ai

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrProviderNotFound is returned when a provider id is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDuplicateProvider is returned when two providers share an id.
	ErrDuplicateProvider = errors.New("provider already registered")
)

// ProviderConfig describes one configured text-generation endpoint.
type ProviderConfig struct {
	ID              string
	Priority        int
	Kind            string
	Endpoint        string
	Credential      string
	Model           string
	MaxOutputTokens int
	Temperature     float32
	Timeout         time.Duration
}

// Validate checks the fields every provider needs.
func (c ProviderConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("provider id is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("provider %s: model is required", c.ID)
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("provider %s: max output tokens must not be negative", c.ID)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("provider %s: timeout must not be negative", c.ID)
	}
	return nil
}

// Provider binds a configuration to the client that talks to it.
type Provider struct {
	Config ProviderConfig
	Client Completer
}

// ClientFactory builds the client for a provider configuration.
type ClientFactory func(cfg ProviderConfig) (Completer, error)

// Registry is the immutable, priority-ordered provider list. Reloading
// configuration means building a new Registry, never editing one.
type Registry struct {
	providers []Provider
}

// NewRegistry validates providers and orders them by ascending priority.
// Equal priorities keep their configuration order.
func NewRegistry(providers ...Provider) (*Registry, error) {
	seen := make(map[string]struct{}, len(providers))
	ordered := make([]Provider, 0, len(providers))
	for _, provider := range providers {
		if err := provider.Config.Validate(); err != nil {
			return nil, err
		}
		if provider.Client == nil {
			return nil, fmt.Errorf("provider %s: client is required", provider.Config.ID)
		}
		if _, exists := seen[provider.Config.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvider, provider.Config.ID)
		}
		seen[provider.Config.ID] = struct{}{}
		ordered = append(ordered, provider)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Config.Priority < ordered[j].Config.Priority
	})

	return &Registry{providers: ordered}, nil
}

// BuildRegistry creates one client per configuration through factory.
func BuildRegistry(configs []ProviderConfig, factory ClientFactory) (*Registry, error) {
	if factory == nil {
		return nil, fmt.Errorf("client factory is required")
	}
	providers := make([]Provider, 0, len(configs))
	for _, cfg := range configs {
		client, err := factory(cfg)
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", cfg.ID, err)
		}
		providers = append(providers, Provider{Config: cfg, Client: client})
	}
	return NewRegistry(providers...)
}

// ListByPriority returns a copy of the providers in attempt order.
func (r *Registry) ListByPriority() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// IsEmpty reports whether no provider is configured.
func (r *Registry) IsEmpty() bool {
	return r == nil || len(r.providers) == 0
}

// Len returns the number of providers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.providers)
}

// Lookup finds a provider by id.
func (r *Registry) Lookup(id string) (Provider, error) {
	if r != nil {
		for _, provider := range r.providers {
			if provider.Config.ID == id {
				return provider, nil
			}
		}
	}
	return Provider{}, ErrProviderNotFound
}
