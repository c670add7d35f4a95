// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// CommandPool plays the role of an ID3D12CommandAllocator. It owns the
// command buffers it allocates and frees them all on Reset.
type CommandPool struct {
	resource
	dev   *Device
	queue rhi.QueueType

	mu      sync.Mutex
	buffers map[*CommandBuffer]struct{}
	next    int
}

var _ rhi.CommandPool = (*CommandPool)(nil)

// CreateCommandPool creates a command pool for desc.Queue.
func (d *Device) CreateCommandPool(desc *rhi.CommandPoolDesc) (rhi.CommandPool, error) {
	if desc == nil {
		return nil, fmt.Errorf("create command pool: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	return &CommandPool{
		resource: resource{label: desc.Label},
		dev:      d,
		queue:    desc.Queue,
		buffers:  make(map[*CommandBuffer]struct{}),
	}, nil
}

// Queue returns the queue type the pool records for.
func (p *CommandPool) Queue() rhi.QueueType { return p.queue }

// Allocate creates a command buffer in the Initial state.
func (p *CommandPool) Allocate() (rhi.CommandBuffer, error) {
	return p.allocate()
}

func (p *CommandPool) allocate() (*CommandBuffer, error) {
	if p.destroyed.Load() {
		return nil, ErrPoolDestroyed
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	label := fmt.Sprintf("%s#%d", p.label, p.next)
	p.next++
	encoder, err := p.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, rhi.Native("create command list", err)
	}
	cb := &CommandBuffer{
		resource: resource{label: label},
		dev:      p.dev,
		pool:     p,
		encoder:  encoder,
	}
	p.buffers[cb] = struct{}{}
	return cb, nil
}

// Reset frees every command buffer allocated from the pool. Buffers still
// recording are discarded first.
func (p *CommandPool) Reset() error {
	if err := p.alive(); err != nil {
		return err
	}
	p.reset()
	return nil
}

func (p *CommandPool) reset() {
	p.mu.Lock()
	buffers := p.buffers
	p.buffers = make(map[*CommandBuffer]struct{})
	p.mu.Unlock()

	for cb := range buffers {
		cb.free()
	}
	p.dev.log().Debug("native: command pool reset", "label", p.label, "freed", len(buffers))
}

// Live returns the number of command buffers that have not been freed.
func (p *CommandPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffers)
}

func (p *CommandPool) forget(cb *CommandBuffer) {
	p.mu.Lock()
	delete(p.buffers, cb)
	p.mu.Unlock()
}

// Destroy frees every command buffer and refuses further allocation.
func (p *CommandPool) Destroy() {
	if !p.release() {
		return
	}
	p.reset()
}
