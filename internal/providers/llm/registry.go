package llm

import (
	"sync"

	"github.com/carelog/carebot/internal/core"
)

// Registry maps model ids to providers, with a fallback used for any
// id that was never registered.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]core.AIProvider
	fallback  core.AIProvider
}

func NewRegistry(fallback core.AIProvider) *Registry {
	return &Registry{
		providers: make(map[string]core.AIProvider),
		fallback:  fallback,
	}
}

func (r *Registry) Register(modelID string, provider core.AIProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[modelID] = provider
}

// For returns the provider registered for modelID, or the fallback.
func (r *Registry) For(modelID string) core.AIProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[modelID]; ok {
		return p
	}
	return r.fallback
}
