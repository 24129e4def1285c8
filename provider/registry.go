package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/randalmurphal/chatkit/session"
)

// Factory creates a new Adapter from the given configuration.
// Each vendor package registers its own factory function.
type Factory func(ctx context.Context, cfg Config) (Adapter, error)

// registry stores registered adapter factories.
var (
	registryMu sync.RWMutex
	registry   = make(map[session.Vendor]Factory)
)

// Register adds an adapter factory to the registry.
// Vendor packages should call this in their init() function.
// Panics if a factory for the same vendor is already registered.
//
// Example:
//
//	func init() {
//	    provider.Register(session.VendorOpenAI, func(ctx context.Context, cfg provider.Config) (provider.Adapter, error) {
//	        return New(cfg), nil
//	    })
//	}
func Register(vendor session.Vendor, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[vendor]; exists {
		panic(fmt.Sprintf("vendor %q already registered", vendor))
	}
	registry[vendor] = factory
}

// New creates a new Adapter for the vendor.
// Returns ErrNotRegistered if no factory is registered.
func New(ctx context.Context, vendor session.Vendor, cfg Config) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[vendor]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, vendor)
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewError(string(vendor), "configure", fmt.Errorf("%w: %w", ErrInvalidRequest, err), false)
	}
	return factory(ctx, cfg)
}

// Available returns the registered vendors, sorted for consistent ordering.
func Available() []session.Vendor {
	registryMu.RLock()
	defer registryMu.RUnlock()

	vendors := make([]session.Vendor, 0, len(registry))
	for v := range registry {
		vendors = append(vendors, v)
	}
	slices.Sort(vendors)
	return vendors
}

// IsRegistered checks if a vendor is registered.
func IsRegistered(vendor session.Vendor) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[vendor]
	return ok
}

// Unregister removes a vendor from the registry.
// This is primarily useful for testing.
func Unregister(vendor session.Vendor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, vendor)
}
