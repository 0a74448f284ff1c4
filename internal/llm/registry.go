package llm

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderFactory builds a provider from settings.
type ProviderFactory func(Settings) (Provider, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]ProviderFactory)
)

// RegisterProvider makes a provider available under name. Provider packages
// call it from init.
func RegisterProvider(name string, factory ProviderFactory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// NewProvider builds the provider registered under name.
func NewProvider(name string, settings Settings) (Provider, error) {
	mu.RLock()
	factory, exists := providers[name]
	mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory(settings)
}

// Registered lists registered provider names in order.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
