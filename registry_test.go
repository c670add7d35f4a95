package rhi

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	name   string
	opened *Config
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Open(_ context.Context, cfg Config) (Device, error) {
	b.opened = &cfg
	return nil, errors.New("fake: no device")
}

func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]registration)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndGet(t *testing.T) {
	withRegistry(t)

	Register("fake", 10, func() Backend { return &fakeBackend{name: "fake"} })

	if !IsRegistered("fake") {
		t.Fatal("IsRegistered(fake) = false")
	}
	b := Get("fake")
	if b == nil || b.Name() != "fake" {
		t.Fatalf("Get(fake) = %v", b)
	}
	if Get("missing") != nil {
		t.Error("Get(missing) should return nil")
	}

	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("IsRegistered(fake) = true after Unregister")
	}
}

func TestAvailablePriorityOrder(t *testing.T) {
	withRegistry(t)

	Register("low", 1, func() Backend { return &fakeBackend{name: "low"} })
	Register("high", 100, func() Backend { return &fakeBackend{name: "high"} })
	Register("mid-b", 50, func() Backend { return &fakeBackend{name: "mid-b"} })
	Register("mid-a", 50, func() Backend { return &fakeBackend{name: "mid-a"} })

	got := Available()
	want := []string{"high", "mid-a", "mid-b", "low"}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	withRegistry(t)

	_, err := Open(context.Background(), DefaultConfig(), WithBackend("nope"))
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenEmptyRegistry(t *testing.T) {
	withRegistry(t)

	_, err := Open(context.Background(), DefaultConfig())
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenPicksHighestPriority(t *testing.T) {
	withRegistry(t)

	low := &fakeBackend{name: "low"}
	high := &fakeBackend{name: "high"}
	Register("low", 1, func() Backend { return low })
	Register("high", 2, func() Backend { return high })

	_, err := Open(context.Background(), DefaultConfig(), WithAdapter(3))
	if err == nil {
		t.Fatal("Open() should surface the backend error")
	}
	if high.opened == nil {
		t.Fatal("highest priority backend was not opened")
	}
	if low.opened != nil {
		t.Error("lower priority backend should not be opened")
	}
	if high.opened.AdapterIndex != 3 {
		t.Errorf("AdapterIndex = %d, want 3 (option applied)", high.opened.AdapterIndex)
	}
}

func TestOpenInvalidConfig(t *testing.T) {
	withRegistry(t)
	Register("fake", 1, func() Backend { return &fakeBackend{name: "fake"} })

	_, err := Open(context.Background(), DefaultConfig(), WithAPI("directx9"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Open() error = %v, want ErrInvalidConfig", err)
	}
}
