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
	"github.com/gogpu/wgpu/hal"
)

// submitter serializes access to the one native queue shared by every
// rhi.QueueType and remembers the last submission index.
type submitter struct {
	mu    sync.Mutex
	queue hal.Queue
	last  uint64
}

// submit submits cmds and returns the submission index.
func (s *submitter) submit(cmds []hal.CommandBuffer) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.queue.Submit(cmds)
	if err != nil {
		return 0, err
	}
	s.last = max(s.last, index)
	return index, nil
}

// completed returns the highest submission index the GPU has finished.
func (s *submitter) completed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.PollCompleted()
}

func (s *submitter) lastSubmitted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// wait blocks until submission index has completed.
func (s *submitter) wait(ctx context.Context, index uint64, timeout time.Duration) error {
	return poll(ctx, timeout, func() bool { return s.completed() >= index },
		"wait queue", func() string { return fmt.Sprintf("submission %d", index) })
}

// Queue is a command queue (ID3D12CommandQueue). Every queue type shares the
// device's single native queue.
type Queue struct {
	dev *Device
	typ rhi.QueueType
}

var _ rhi.Queue = (*Queue)(nil)

// Type returns the queue type this handle was requested as.
func (q *Queue) Type() rhi.QueueType { return q.typ }

// Submit executes cmds in order. Every command buffer must be Executable and
// becomes Submitted. If signal is non-nil it reaches value when the batch
// completes.
func (q *Queue) Submit(cmds []rhi.CommandBuffer, signal rhi.Fence, value uint64) error {
	if err := q.dev.alive(); err != nil {
		return err
	}
	buffers := make([]*CommandBuffer, len(cmds))
	native := make([]hal.CommandBuffer, len(cmds))
	for i, c := range cmds {
		cb, err := unwrap[*CommandBuffer]("submit", c)
		if err != nil {
			return err
		}
		if cb.state != rhi.CommandBufferExecutable {
			return fmt.Errorf("submit %q in state %s: %w", cb.label, cb.state, rhi.ErrNotExecutable)
		}
		buffers[i] = cb
		native[i] = cb.cmd
	}

	if err := q.submit(native, signal, value); err != nil {
		return err
	}

	for _, cb := range buffers {
		cb.state = rhi.CommandBufferSubmitted
	}
	q.dev.log().Debug("native: submitted", "queue", q.typ.String(), "buffers", len(cmds), "signal", value)
	return nil
}

func (q *Queue) submit(native []hal.CommandBuffer, signal rhi.Fence, value uint64) error {
	if signal == nil {
		_, err := q.dev.sub.submit(native)
		return rhi.Native("submit", err)
	}
	f, err := unwrap[*Fence]("submit", signal)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.next(value); err != nil {
		return err
	}
	index, err := q.dev.sub.submit(native)
	if err != nil {
		return rhi.Native("submit", err)
	}
	f.record(value, index)
	return nil
}

// WriteBuffer copies data into buf at offset through the native queue.
func (q *Queue) WriteBuffer(buf rhi.Buffer, offset uint64, data []byte) error {
	b, err := unwrap[*Buffer]("write buffer", buf)
	if err != nil {
		return err
	}
	if err := checkRange(offset, uint64(len(data)), b.size); err != nil {
		return fmt.Errorf("write buffer %q: %w", b.label, err)
	}
	if len(data) == 0 {
		return nil
	}
	q.dev.sub.mu.Lock()
	err = q.dev.sub.queue.WriteBuffer(b.buffer, offset, data)
	q.dev.sub.mu.Unlock()
	return rhi.Native("write buffer", err)
}

// WriteImage uploads tightly packed rows of mip level mip.
func (q *Queue) WriteImage(img rhi.Image, mip uint32, data []byte) error {
	im, err := unwrap[*Image]("write image", img)
	if err != nil {
		return err
	}
	if mip >= im.desc.MipLevels {
		return fmt.Errorf("write image %q: mip %d of %d: %w", im.label, mip, im.desc.MipLevels, rhi.ErrInvalidSize)
	}
	w, h, layers := im.mipExtent(mip)
	bpt := im.desc.Format.BytesPerTexel()
	if bpt == 0 {
		return fmt.Errorf("write image %q: format %s: %w", im.label, im.desc.Format, rhi.ErrInvalidSize)
	}
	want := uint64(w) * uint64(h) * uint64(layers) * uint64(bpt)
	if uint64(len(data)) != want {
		return fmt.Errorf("write image %q: got %d bytes, want %d: %w", im.label, len(data), want, rhi.ErrInvalidSize)
	}
	q.dev.sub.mu.Lock()
	err = q.dev.sub.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: im.texture, MipLevel: mip},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * bpt, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: layers},
	)
	q.dev.sub.mu.Unlock()
	return rhi.Native("write image", err)
}

// ReadBuffer maps a CPU-visible (readback) buffer and copies it into dst.
func (q *Queue) ReadBuffer(buf rhi.Buffer, offset uint64, dst []byte) error {
	b, err := unwrap[*Buffer]("read buffer", buf)
	if err != nil {
		return err
	}
	if err := checkRange(offset, uint64(len(dst)), b.size); err != nil {
		return fmt.Errorf("read buffer %q: %w", b.label, err)
	}
	if len(dst) == 0 {
		return nil
	}
	return b.readMapped(offset, dst)
}

// WaitIdle blocks until everything submitted so far has completed.
func (q *Queue) WaitIdle(ctx context.Context) error {
	if err := q.dev.alive(); err != nil {
		return err
	}
	return q.dev.sub.wait(ctx, q.dev.sub.lastSubmitted(), q.dev.cfg.FenceTimeout)
}

// checkRange validates [offset, offset+n) against size.
func checkRange(offset, n, size uint64) error {
	if offset > size || n > size-offset {
		return fmt.Errorf("range [%d, %d) exceeds size %d: %w", offset, offset+n, size, rhi.ErrInvalidSize)
	}
	return nil
}
