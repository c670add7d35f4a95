package rhi

import "time"

// Option adjusts a Config passed to Open.
//
// Example:
//
//	// Default backend and adapter
//	dev, err := rhi.Open(ctx, rhi.DefaultConfig())
//
//	// Force Vulkan on the second adapter
//	dev, err := rhi.Open(ctx, rhi.DefaultConfig(),
//	    rhi.WithAPI(rhi.APIVulkan), rhi.WithAdapter(1))
type Option func(*Config)

// WithBackend selects a registered backend by name.
func WithBackend(name string) Option {
	return func(c *Config) {
		c.Backend = name
	}
}

// WithAPI selects the native API.
func WithAPI(api string) Option {
	return func(c *Config) {
		c.API = api
	}
}

// WithAdapter selects an adapter by enumeration index.
func WithAdapter(index int) Option {
	return func(c *Config) {
		c.AdapterIndex = index
	}
}

// WithFenceTimeout bounds every fence wait. Non-positive values are ignored.
func WithFenceTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.FenceTimeout = d
		}
	}
}

// WithLabel sets the debug label prefix of native objects.
func WithLabel(label string) Option {
	return func(c *Config) {
		c.Label = label
	}
}
