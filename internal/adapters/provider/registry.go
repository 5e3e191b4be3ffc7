// Package provider provides the registry of chat adapters keyed by provider name.
package provider

import (
	"fmt"
	"sync"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
)

// Registry manages the registration and lookup of chat adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ports.ChatAdapter
	order    []string // maintains registration order
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]ports.ChatAdapter),
		order:    make([]string, 0),
	}
}

// Register adds an adapter under its Name.
// If an adapter with the same name already exists, it will be replaced.
func (r *Registry) Register(adapter ports.ChatAdapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter cannot be nil")
	}

	name := adapter.Name()
	if name == "" {
		return fmt.Errorf("adapter name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}

	r.adapters[name] = adapter
	return nil
}

// Get retrieves an adapter by name.
// Returns nil if the adapter is not found.
func (r *Registry) Get(name string) ports.ChatAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[name]
}

// GetRequired retrieves an adapter by name, returning an error if not found.
func (r *Registry) GetRequired(name string) (ports.ChatAdapter, error) {
	adapter := r.Get(name)
	if adapter == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrProviderNotFound, name)
	}
	return adapter, nil
}

// List returns all registered adapter names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Count returns the number of registered adapters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
