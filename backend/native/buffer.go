// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// Buffer is a committed buffer resource (ID3D12Resource).
type Buffer struct {
	resource
	dev    *Device
	buffer hal.Buffer
	size   uint64
	alloc  uint64
	usage  rhi.BufferUsage
	mem    rhi.MemoryType
}

var _ rhi.Buffer = (*Buffer)(nil)

// CreateBuffer creates a buffer in the heap selected by desc.Memory.
func (d *Device) CreateBuffer(desc *rhi.BufferDesc) (rhi.Buffer, error) {
	return d.createBuffer(desc)
}

// CreateBufferInit creates a buffer and uploads data into it. A zero
// desc.Size takes the length of data.
func (d *Device) CreateBufferInit(desc *rhi.BufferDesc, data []byte) (rhi.Buffer, error) {
	if desc == nil {
		return nil, fmt.Errorf("create buffer: %w", rhi.ErrNilDescriptor)
	}
	sized := *desc
	if sized.Size == 0 {
		sized.Size = uint64(len(data))
	}
	b, err := d.createBuffer(&sized)
	if err != nil {
		return nil, err
	}
	if err := b.Write(0, data); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (d *Device) createBuffer(desc *rhi.BufferDesc) (*Buffer, error) {
	if desc == nil {
		return nil, fmt.Errorf("create buffer: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: zero size: %w", desc.Label, rhi.ErrInvalidSize)
	}
	if limit := d.limits.MaxBufferSize; limit > 0 && desc.Size > limit {
		return nil, fmt.Errorf("create buffer %q: %d bytes exceeds limit %d: %w", desc.Label, desc.Size, limit, rhi.ErrInvalidSize)
	}

	alloc := (desc.Size + 3) &^ 3
	hb, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  alloc,
		Usage: convertBufferUsage(desc.Usage, desc.Memory),
	})
	if err != nil {
		return nil, rhi.Native("create buffer", err)
	}
	d.log().Debug("native: buffer created", "label", desc.Label, "size", desc.Size, "heap", desc.Memory.String())
	return &Buffer{
		resource: resource{label: desc.Label},
		dev:      d,
		buffer:   hb,
		size:     desc.Size,
		alloc:    alloc,
		usage:    desc.Usage,
		mem:      desc.Memory,
	}, nil
}

// Size returns the requested size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the usage flags the buffer was created with.
func (b *Buffer) Usage() rhi.BufferUsage { return b.usage }

// Memory returns the heap the buffer lives in.
func (b *Buffer) Memory() rhi.MemoryType { return b.mem }

// Write uploads data at offset through the queue.
func (b *Buffer) Write(offset uint64, data []byte) error {
	return b.dev.queues[rhi.QueueTransfer].WriteBuffer(b, offset, data)
}

// Read copies len(dst) bytes starting at offset back to the CPU. Readback
// buffers are read directly. Other heaps go through a staging copy and a
// fence wait.
func (b *Buffer) Read(ctx context.Context, offset uint64, dst []byte) error {
	if err := b.alive(); err != nil {
		return err
	}
	if err := checkRange(offset, uint64(len(dst)), b.size); err != nil {
		return fmt.Errorf("read buffer %q: %w", b.label, err)
	}
	if len(dst) == 0 {
		return nil
	}
	if b.mem == rhi.MemoryReadback {
		return b.readMapped(offset, dst)
	}

	start := offset &^ 3
	end := min((offset+uint64(len(dst))+3)&^3, b.alloc)
	staging, err := b.dev.createBuffer(&rhi.BufferDesc{
		Label:  b.label + " readback",
		Size:   end - start,
		Memory: rhi.MemoryReadback,
	})
	if err != nil {
		return err
	}
	defer staging.Destroy()

	err = b.dev.OneShot(ctx, func(cb rhi.CommandBuffer) error {
		return cb.CopyBuffer(b, staging, rhi.BufferCopy{SrcOffset: start, Size: staging.alloc})
	})
	if err != nil {
		return fmt.Errorf("read buffer %q: %w", b.label, err)
	}
	return staging.readMapped(offset-start, dst)
}

// readMapped maps the 4-byte aligned span around [offset, offset+len(dst))
// and copies it into dst. The range must already be checked.
func (b *Buffer) readMapped(offset uint64, dst []byte) error {
	start := offset &^ 3
	end := min((offset+uint64(len(dst))+3)&^3, b.alloc)
	m, err := b.dev.device.MapBuffer(b.buffer, start, end-start)
	if err != nil {
		return rhi.Native("read buffer", err)
	}
	if m.Ptr == nil {
		_ = b.dev.device.UnmapBuffer(b.buffer)
		return rhi.Native("read buffer", fmt.Errorf("map %q: %w", b.label, hal.ErrInvalidMapRange))
	}
	mapped := unsafe.Slice((*byte)(m.Ptr), end-start)
	copy(dst, mapped[offset-start:])
	return rhi.Native("read buffer", b.dev.device.UnmapBuffer(b.buffer))
}

// Destroy releases the native buffer.
func (b *Buffer) Destroy() {
	if !b.release() {
		return
	}
	b.dev.device.DestroyBuffer(b.buffer)
}
