// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// heldQueue reports no submission past hold as completed.
type heldQueue struct {
	hal.Queue
	hold atomic.Uint64
}

func (q *heldQueue) PollCompleted() uint64 {
	return min(q.Queue.PollCompleted(), q.hold.Load())
}

// newHeldDevice wraps a noop device whose queue completes nothing until
// hold is raised.
func newHeldDevice(t *testing.T, opts ...rhi.Option) (*Device, *heldQueue) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	hq := &heldQueue{Queue: queue}
	d, err := Wrap(device, hq, opts...)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	t.Cleanup(func() {
		hq.hold.Store(^uint64(0))
		d.Destroy()
	})
	return d, hq
}

func TestFenceSignal(t *testing.T) {
	d := newTestDevice(t)
	f, err := d.CreateFence(0)
	if err != nil {
		t.Fatalf("CreateFence failed: %v", err)
	}
	defer f.Destroy()

	if f.Value() != 0 {
		t.Errorf("Value() = %d, want 0", f.Value())
	}
	if err := f.Signal(0); !errors.Is(err, rhi.ErrFenceValue) {
		t.Errorf("Signal(0) error = %v, want ErrFenceValue", err)
	}
	if err := f.Signal(1); err != nil {
		t.Fatalf("Signal(1) failed: %v", err)
	}
	if f.Value() != 1 {
		t.Errorf("Value() = %d, want 1", f.Value())
	}
	if err := f.Signal(1); !errors.Is(err, rhi.ErrFenceValue) {
		t.Errorf("repeated Signal(1) error = %v, want ErrFenceValue", err)
	}
}

func TestFenceInitialValue(t *testing.T) {
	d := newTestDevice(t)
	f, err := d.CreateFence(5)
	if err != nil {
		t.Fatalf("CreateFence(5) failed: %v", err)
	}
	defer f.Destroy()

	if f.Value() != 5 {
		t.Errorf("Value() = %d, want 5", f.Value())
	}
	if err := f.Signal(4); !errors.Is(err, rhi.ErrFenceValue) {
		t.Errorf("Signal(4) error = %v, want ErrFenceValue", err)
	}
}

func TestFenceWait(t *testing.T) {
	d := newTestDevice(t)
	f, err := d.CreateFence(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait(0) failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = f.Wait(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait(canceled) error = %v, want context.Canceled", err)
	}
	if rhi.StatusOf(err) != rhi.StatusAborted {
		t.Errorf("StatusOf = %s, want %s", rhi.StatusOf(err), rhi.StatusAborted)
	}

	f.Destroy()
	f.Destroy()
	if err := f.Signal(2); !errors.Is(err, rhi.ErrDestroyed) {
		t.Errorf("Signal after Destroy error = %v, want ErrDestroyed", err)
	}
	if err := f.Wait(context.Background(), 0); !errors.Is(err, rhi.ErrDestroyed) {
		t.Errorf("Wait after Destroy error = %v, want ErrDestroyed", err)
	}
}

func TestFrames(t *testing.T) {
	d := newTestDevice(t)
	frames, err := d.NewFrames()
	if err != nil {
		t.Fatalf("NewFrames failed: %v", err)
	}
	defer frames.Destroy()

	if frames.Count() != rhi.DefaultFramesInFlight {
		t.Errorf("Count() = %d, want %d", frames.Count(), rhi.DefaultFramesInFlight)
	}
	if err := frames.End(); !errors.Is(err, rhi.ErrNotRecording) {
		t.Errorf("End without Begin error = %v, want ErrNotRecording", err)
	}

	ctx := context.Background()
	for want := range frames.Count() {
		idx, err := frames.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin frame %d failed: %v", want, err)
		}
		if idx != want {
			t.Errorf("Begin() = %d, want %d", idx, want)
		}
		if _, err := frames.Begin(ctx); !errors.Is(err, rhi.ErrPassActive) {
			t.Errorf("double Begin error = %v, want ErrPassActive", err)
		}
		if err := frames.End(); err != nil {
			t.Fatalf("End frame %d failed: %v", want, err)
		}
	}
	if frames.Index() != 0 {
		t.Errorf("Index() after a full ring = %d, want 0", frames.Index())
	}
	if frames.fence.Value() != uint64(frames.Count()) {
		t.Errorf("frame fence value = %d, want %d", frames.fence.Value(), frames.Count())
	}
}

func TestFenceCompletesWithSubmission(t *testing.T) {
	d, hq := newHeldDevice(t, rhi.WithFenceTimeout(time.Second))
	f, err := d.CreateFence(0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Destroy()

	if err := f.Signal(1); err != nil {
		t.Fatalf("Signal(1) failed: %v", err)
	}
	if err := d.Queue(rhi.QueueGraphics).Submit(nil, f, 2); err != nil {
		t.Fatalf("Submit with signal failed: %v", err)
	}
	if err := d.Queue(rhi.QueueGraphics).Submit(nil, f, 2); !errors.Is(err, rhi.ErrFenceValue) {
		t.Errorf("Submit reusing value 2 error = %v, want ErrFenceValue", err)
	}
	if f.Value() != 0 {
		t.Errorf("Value() before completion = %d, want 0", f.Value())
	}

	hq.hold.Store(1)
	if f.Value() != 1 {
		t.Errorf("Value() after first submission = %d, want 1", f.Value())
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		hq.hold.Store(2)
	}()
	if err := f.Wait(context.Background(), 2); err != nil {
		t.Fatalf("Wait(2) failed: %v", err)
	}
	if f.Value() != 2 {
		t.Errorf("Value() = %d, want 2", f.Value())
	}
}

func TestWaitIdleTimeout(t *testing.T) {
	d, hq := newHeldDevice(t, rhi.WithFenceTimeout(100*time.Millisecond))
	f, err := d.CreateFence(0)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Destroy()
	if err := f.Signal(1); err != nil {
		t.Fatal(err)
	}

	q := d.Queue(rhi.QueueTransfer)
	err = q.WaitIdle(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitIdle error = %v, want context.DeadlineExceeded", err)
	}
	if rhi.StatusOf(err) != rhi.StatusTimeout {
		t.Errorf("StatusOf = %s, want %s", rhi.StatusOf(err), rhi.StatusTimeout)
	}

	hq.hold.Store(1)
	if err := q.WaitIdle(context.Background()); err != nil {
		t.Errorf("WaitIdle after completion failed: %v", err)
	}
}

func TestFramesBeginBlocks(t *testing.T) {
	framesInFlight := func(c *rhi.Config) { c.FramesInFlight = 2 }
	d, hq := newHeldDevice(t, framesInFlight, rhi.WithFenceTimeout(time.Second))
	frames, err := d.NewFrames()
	if err != nil {
		t.Fatalf("NewFrames failed: %v", err)
	}
	defer frames.Destroy()

	for i := range 2 {
		if _, err := frames.Begin(context.Background()); err != nil {
			t.Fatalf("Begin frame %d failed: %v", i, err)
		}
		if err := frames.End(); err != nil {
			t.Fatalf("End frame %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = frames.Begin(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Begin with frame 0 in flight error = %v, want context.DeadlineExceeded", err)
	}
	if rhi.StatusOf(err) != rhi.StatusTimeout {
		t.Errorf("StatusOf = %s, want %s", rhi.StatusOf(err), rhi.StatusTimeout)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		hq.hold.Store(1)
	}()
	idx, err := frames.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin after frame 0 completed failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("Begin() = %d, want 0", idx)
	}
	if frames.fence.Value() != 1 {
		t.Errorf("frame fence value = %d, want 1", frames.fence.Value())
	}
	if err := frames.End(); err != nil {
		t.Errorf("End failed: %v", err)
	}
}
