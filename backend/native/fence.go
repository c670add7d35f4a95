// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/rhi"
)

// waitSlice is the interval at which waits poll the queue for progress.
const waitSlice = 50 * time.Millisecond

// Fence is a timeline fence (ID3D12Fence). hal fences carry no user-side
// signal, so the timeline is kept on queue submission indices: a value
// completes once the submission that signalled it has completed.
type Fence struct {
	resource
	dev *Device

	mu        sync.Mutex
	signalled uint64
	completed uint64
	pending   []fenceSignal
}

// fenceSignal ties a fence value to the submission that carries it.
type fenceSignal struct {
	value uint64
	index uint64
}

var _ rhi.Fence = (*Fence)(nil)

// CreateFence creates a timeline fence that starts out completed at initial.
func (d *Device) CreateFence(initial uint64) (rhi.Fence, error) {
	return d.createFence("fence", initial)
}

func (d *Device) createFence(label string, initial uint64) (*Fence, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	d.log().Debug("native: fence created", "label", label, "initial", initial)
	return &Fence{
		resource:  resource{label: label},
		dev:       d,
		signalled: initial,
		completed: initial,
	}, nil
}

// Value returns the highest value the GPU has completed.
func (f *Fence) Value() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retire()
	return f.completed
}

// retire moves finished signals into completed. f.mu must be held.
func (f *Fence) retire() {
	if len(f.pending) == 0 {
		return
	}
	done := f.dev.sub.completed()
	n := 0
	for n < len(f.pending) && f.pending[n].index <= done {
		f.completed = f.pending[n].value
		n++
	}
	f.pending = f.pending[n:]
}

// next checks that value follows the last signal. f.mu must be held.
func (f *Fence) next(value uint64) error {
	if value <= f.signalled {
		return fmt.Errorf("signal %q to %d after %d: %w", f.label, value, f.signalled, rhi.ErrFenceValue)
	}
	return nil
}

// record notes that submission index signals value. f.mu must be held.
func (f *Fence) record(value, index uint64) {
	f.signalled = value
	f.pending = append(f.pending, fenceSignal{value: value, index: index})
}

// Signal enqueues an empty submission that signals value.
func (f *Fence) Signal(value uint64) error {
	if err := f.alive(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.next(value); err != nil {
		return err
	}
	index, err := f.dev.sub.submit(nil)
	if err != nil {
		return rhi.Native("signal fence", err)
	}
	f.record(value, index)
	return nil
}

// Wait blocks until the fence reaches value. Values that have not been
// signalled yet are waited for as well, up to the fence timeout.
func (f *Fence) Wait(ctx context.Context, value uint64) error {
	if err := f.alive(); err != nil {
		return err
	}
	return poll(ctx, f.dev.cfg.FenceTimeout, func() bool { return f.Value() >= value },
		"wait fence", func() string { return fmt.Sprintf("%q value %d", f.label, value) })
}

// Destroy marks the fence destroyed. Pending signals are left to the queue.
func (f *Fence) Destroy() {
	f.release()
}

// poll checks done every waitSlice until it reports true, ctx is done, or
// timeout elapses. what describes the awaited event in timeout errors.
func poll(ctx context.Context, timeout time.Duration, done func() bool, op string, what func() string) error {
	if done() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return rhi.Native(op, err)
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(waitSlice)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return rhi.Native(op, ctx.Err())
		case <-deadline.C:
			if done() {
				return nil
			}
			return rhi.NativeStatus(op, rhi.StatusTimeout,
				fmt.Errorf("%s not reached after %v: %w", what(), timeout, context.DeadlineExceeded))
		case <-tick.C:
			if done() {
				return nil
			}
		}
	}
}
