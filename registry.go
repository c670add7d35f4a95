package rhi

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Backend opens devices on one native API.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string

	// Open creates a device configured by cfg.
	Open(ctx context.Context, cfg Config) (Device, error)
}

// BackendFactory creates a new backend instance.
type BackendFactory func() Backend

type registration struct {
	factory  BackendFactory
	priority int
}

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]registration)
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// Higher priority backends are preferred by Open when Config.Backend is empty.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, priority int, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = registration{factory: factory, priority: priority}
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, highest priority first.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedNames()
}

// sortedNames must be called with registryMu held.
func sortedNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := backends[names[i]].priority, backends[names[j]].priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := backends[name]
	if !ok {
		return nil
	}
	return reg.factory()
}

// Open opens a device on cfg.Backend, or on the highest priority registered
// backend when cfg.Backend is empty. Options are applied on top of cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (Device, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var b Backend
	if cfg.Backend != "" {
		b = Get(cfg.Backend)
		if b == nil {
			return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, cfg.Backend)
		}
	} else {
		registryMu.RLock()
		for _, name := range sortedNames() {
			if b = backends[name].factory(); b != nil {
				break
			}
		}
		registryMu.RUnlock()
		if b == nil {
			return nil, ErrBackendNotAvailable
		}
	}

	dev, err := b.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("rhi: open %s: %w", b.Name(), err)
	}
	Logger().Info("rhi: device opened", "backend", b.Name(), "api", dev.Backend())
	return dev, nil
}
