package rhi

import (
	"testing"
	"time"
)

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithBackend("native"),
		WithAPI(APIMetal),
		WithAdapter(4),
		WithFenceTimeout(time.Second),
		WithLabel("editor"),
	} {
		opt(&cfg)
	}

	if cfg.Backend != "native" {
		t.Errorf("Backend = %q, want native", cfg.Backend)
	}
	if cfg.API != APIMetal {
		t.Errorf("API = %q, want %q", cfg.API, APIMetal)
	}
	if cfg.AdapterIndex != 4 {
		t.Errorf("AdapterIndex = %d, want 4", cfg.AdapterIndex)
	}
	if cfg.FenceTimeout != time.Second {
		t.Errorf("FenceTimeout = %v, want 1s", cfg.FenceTimeout)
	}
	if cfg.Label != "editor" {
		t.Errorf("Label = %q, want editor", cfg.Label)
	}
}

func TestWithFenceTimeoutIgnoresNonPositive(t *testing.T) {
	cfg := DefaultConfig()
	WithFenceTimeout(-time.Second)(&cfg)
	if cfg.FenceTimeout != DefaultFenceTimeout {
		t.Errorf("FenceTimeout = %v, want default", cfg.FenceTimeout)
	}
}
