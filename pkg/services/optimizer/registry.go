package optimizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
)

// Registry manages provider factories keyed by provider name.
type Registry interface {
	// Register adds a new provider factory
	Register(provider string, factory ProviderFactory) error
	// Create instantiates a provider using the supplied config
	Create(ctx context.Context, provider string, cfg domain.Config) (ResourceProvider, error)
	// ListProviders returns a list of registered providers
	ListProviders() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates a new provider registry
func NewRegistry(factories map[string]ProviderFactory) Registry {
	r := &registry{factories: make(map[string]ProviderFactory)}
	for name, factory := range factories {
		_ = r.Register(name, factory)
	}
	return r
}

func (r *registry) Register(provider string, factory ProviderFactory) error {
	if provider == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[provider]; exists {
		return fmt.Errorf("provider %q is already registered", provider)
	}

	r.factories[provider] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, provider string, cfg domain.Config) (ResourceProvider, error) {
	r.mu.RLock()
	factory, exists := r.factories[provider]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider %q is not registered", provider)
	}

	return factory(ctx, cfg)
}

func (r *registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for provider := range r.factories {
		providers = append(providers, provider)
	}
	return providers
}
