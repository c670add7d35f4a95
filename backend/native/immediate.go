// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"
	"fmt"

	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// OneShot records a command buffer with record, submits it and waits for
// it to complete. The command buffer is freed before OneShot returns unless
// the wait fails, in which case the GPU may still be executing it and it is
// left alive.
func (d *Device) OneShot(ctx context.Context, record func(cb rhi.CommandBuffer) error) error {
	if err := d.alive(); err != nil {
		return err
	}
	pool := &CommandPool{
		resource: resource{label: "one-shot"},
		dev:      d,
		queue:    rhi.QueueGraphics,
		buffers:  make(map[*CommandBuffer]struct{}),
	}
	inFlight := false
	defer func() {
		if !inFlight {
			pool.Destroy()
		}
	}()

	cb, err := pool.allocate()
	if err != nil {
		return err
	}
	if err := cb.Begin(); err != nil {
		return err
	}
	if err := record(cb); err != nil {
		cb.Discard()
		return err
	}
	if err := cb.End(); err != nil {
		cb.Discard()
		return err
	}

	index, err := d.sub.submit([]hal.CommandBuffer{cb.cmd})
	if err != nil {
		return rhi.Native("submit one-shot", err)
	}
	cb.state = rhi.CommandBufferSubmitted
	if err := d.sub.wait(ctx, index, d.cfg.FenceTimeout); err != nil {
		inFlight = true
		d.log().Warn("native: one-shot command list left in flight", "submission", index, "err", err)
		return err
	}
	return nil
}

// Frames paces CPU recording against the GPU with one fence value per
// frame in flight.
type Frames struct {
	fence   *Fence
	pending []uint64
	index   int
	value   uint64
	open    bool
}

// NewFrames creates a ring of Config.FramesInFlight frame slots.
func (d *Device) NewFrames() (*Frames, error) {
	n := d.cfg.FramesInFlight
	if n < 1 {
		n = rhi.DefaultFramesInFlight
	}
	f, err := d.createFence("frames", 0)
	if err != nil {
		return nil, err
	}
	return &Frames{fence: f, pending: make([]uint64, n)}, nil
}

// Count returns the number of frames in flight.
func (f *Frames) Count() int { return len(f.pending) }

// Index returns the slot of the current frame.
func (f *Frames) Index() int { return f.index }

// Begin waits until the GPU has finished the frame that last used the
// current slot and returns the slot index.
func (f *Frames) Begin(ctx context.Context) (int, error) {
	if f.open {
		return f.index, fmt.Errorf("begin frame %d: frame already open: %w", f.index, rhi.ErrPassActive)
	}
	if err := f.fence.Wait(ctx, f.pending[f.index]); err != nil {
		return f.index, err
	}
	f.open = true
	return f.index, nil
}

// End signals the current slot and advances to the next one.
func (f *Frames) End() error {
	if !f.open {
		return fmt.Errorf("end frame %d: %w", f.index, rhi.ErrNotRecording)
	}
	f.value++
	if err := f.fence.Signal(f.value); err != nil {
		return err
	}
	f.pending[f.index] = f.value
	f.index = (f.index + 1) % len(f.pending)
	f.open = false
	return nil
}

// Destroy releases the frame fence.
func (f *Frames) Destroy() { f.fence.Destroy() }
