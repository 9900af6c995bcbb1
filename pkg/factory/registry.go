package factory

import (
	"sync"

	"github.com/chatkit-dev/chatkit/pkg/llm"
)

// AdapterConstructor is a function that creates a new adapter for a provider
type AdapterConstructor func(config llm.ClientConfig) (llm.Adapter, error)

// providerRegistry holds all registered adapter constructors
type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]AdapterConstructor
}

var globalRegistry = &providerRegistry{
	providers: make(map[string]AdapterConstructor),
}

// RegisterProvider registers an adapter constructor function
func RegisterProvider(name string, constructor AdapterConstructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.providers[name] = constructor
}

// GetProvider returns an adapter constructor by name
func GetProvider(name string) (AdapterConstructor, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	constructor, exists := globalRegistry.providers[name]
	return constructor, exists
}

// ListProviders returns all registered provider names
func ListProviders() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.providers))
	for name := range globalRegistry.providers {
		names = append(names, name)
	}
	return names
}
