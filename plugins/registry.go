package plugins

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

type factoryStore struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// registry is shared by every Registry handle in the process
var registry = &factoryStore{factories: make(map[string]Factory)}

// Registry is a handle on the process-wide name to factory table.
// Handles are cheap; all of them observe and mutate the same table.
type Registry struct {
	store *factoryStore
}

// NewRegistry returns a handle on the process-wide registry
func NewRegistry() *Registry {
	return &Registry{store: registry}
}

// Add stores factory under name, replacing any factory already stored there.
func (r *Registry) Add(name string, factory Factory) error {
	if factory == nil {
		return NewArgumentError("supplier cannot be null")
	}
	if isBlank(name) {
		return NewArgumentError("name cannot be null or blank")
	}

	r.store.mu.Lock()
	_, replaced := r.store.factories[name]
	r.store.factories[name] = factory
	r.store.mu.Unlock()

	slog.Debug("Plugin registered", "name", name, "replaced", replaced)
	return nil
}

// Has reports whether a factory is stored under name
func (r *Registry) Has(name string) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, exists := r.store.factories[name]
	return exists
}

// Get builds a new plugin instance with the factory stored under name.
func (r *Registry) Get(name string) (Plugin, error) {
	if isBlank(name) {
		return nil, NewArgumentError("name cannot be null or blank")
	}

	r.store.mu.RLock()
	factory, exists := r.store.factories[name]
	r.store.mu.RUnlock()

	if !exists {
		return nil, newNotFoundError("name doesn't exist")
	}
	// the factory runs outside the lock so it may use the registry itself
	p := factory()
	if p == nil {
		return nil, fmt.Errorf("factory for %q returned no plugin", name)
	}
	return p, nil
}

// Names returns the registered plugin names in sorted order
func (r *Registry) Names() []string {
	r.store.mu.RLock()
	names := make([]string, 0, len(r.store.factories))
	for name := range r.store.factories {
		names = append(names, name)
	}
	r.store.mu.RUnlock()

	sort.Strings(names)
	return names
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
