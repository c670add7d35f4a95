// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/pixels"
	"github.com/gogpu/wgpu/hal"
)

// CommandBuffer is a command list (ID3D12GraphicsCommandList) recorded
// through a hal command encoder.
//
// State machine:
//
//	Initial    -> Begin()   -> Recording
//	Recording  -> End()     -> Executable
//	Recording  -> Discard() -> Initial
//	Executable -> Submit    -> Submitted
//	any        -> Reset     -> Freed
//
// A CommandBuffer is not safe for concurrent use.
type CommandBuffer struct {
	resource
	dev     *Device
	pool    *CommandPool
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer
	state   rhi.CommandBufferState

	// pass is the open compute or render pass, if any.
	pass interface{ ended() bool }
}

var _ rhi.CommandBuffer = (*CommandBuffer)(nil)

// State returns the lifecycle state.
func (c *CommandBuffer) State() rhi.CommandBufferState { return c.state }

// Begin starts recording. Only an Initial command buffer can begin.
func (c *CommandBuffer) Begin() error {
	if err := c.alive(); err != nil {
		return err
	}
	if c.state != rhi.CommandBufferInitial {
		return fmt.Errorf("begin %q in state %s: %w", c.label, c.state, rhi.ErrNotRecording)
	}
	if err := c.encoder.BeginEncoding(c.label); err != nil {
		return rhi.Native("begin command list", err)
	}
	c.state = rhi.CommandBufferRecording
	return nil
}

// End closes the command list. An open pass must be ended first.
func (c *CommandBuffer) End() error {
	if err := c.recording("end"); err != nil {
		return err
	}
	cmd, err := c.encoder.EndEncoding()
	if err != nil {
		return rhi.Native("close command list", err)
	}
	c.cmd = cmd
	c.state = rhi.CommandBufferExecutable
	return nil
}

// Discard abandons the recording and returns the buffer to Initial.
func (c *CommandBuffer) Discard() {
	if c.state != rhi.CommandBufferRecording {
		return
	}
	c.encoder.DiscardEncoding()
	c.pass = nil
	c.state = rhi.CommandBufferInitial
}

// recording checks that commands can be recorded now.
func (c *CommandBuffer) recording(op string) error {
	if err := c.alive(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if c.state != rhi.CommandBufferRecording {
		return fmt.Errorf("%s on %q in state %s: %w", op, c.label, c.state, rhi.ErrNotRecording)
	}
	if c.pass != nil && !c.pass.ended() {
		return fmt.Errorf("%s on %q: %w", op, c.label, rhi.ErrPassActive)
	}
	c.pass = nil
	return nil
}

// CopyBuffer copies regions from src to dst. With no regions the whole of
// the smaller buffer is copied. Ranges are checked against the 4-byte
// aligned allocation.
func (c *CommandBuffer) CopyBuffer(src, dst rhi.Buffer, regions ...rhi.BufferCopy) error {
	if err := c.recording("copy buffer"); err != nil {
		return err
	}
	s, err := unwrap[*Buffer]("copy buffer", src)
	if err != nil {
		return err
	}
	d, err := unwrap[*Buffer]("copy buffer", dst)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		regions = []rhi.BufferCopy{{Size: min(s.alloc, d.alloc)}}
	}
	copies := make([]hal.BufferCopy, len(regions))
	for i, r := range regions {
		if r.Size == 0 || r.Size%4 != 0 || r.SrcOffset%4 != 0 || r.DstOffset%4 != 0 {
			return fmt.Errorf("copy buffer region %d: offsets and size must be 4-byte multiples: %w", i, rhi.ErrInvalidSize)
		}
		if err := checkRange(r.SrcOffset, r.Size, s.alloc); err != nil {
			return fmt.Errorf("copy buffer source: %w", err)
		}
		if err := checkRange(r.DstOffset, r.Size, d.alloc); err != nil {
			return fmt.Errorf("copy buffer destination: %w", err)
		}
		copies[i] = hal.BufferCopy{SrcOffset: r.SrcOffset, DstOffset: r.DstOffset, Size: r.Size}
	}
	c.encoder.CopyBufferToBuffer(s.buffer, d.buffer, copies)
	return nil
}

// CopyBufferToImage copies texel rows from src into dst.
func (c *CommandBuffer) CopyBufferToImage(src rhi.Buffer, dst rhi.Image, regions ...rhi.BufferImageCopy) error {
	if err := c.recording("copy buffer to image"); err != nil {
		return err
	}
	b, err := unwrap[*Buffer]("copy buffer to image", src)
	if err != nil {
		return err
	}
	im, err := unwrap[*Image]("copy buffer to image", dst)
	if err != nil {
		return err
	}
	copies, err := textureCopies(b, im, regions)
	if err != nil {
		return fmt.Errorf("copy buffer to image: %w", err)
	}
	c.encoder.CopyBufferToTexture(b.buffer, im.texture, copies)
	return nil
}

// CopyImageToBuffer copies texel rows from src into dst.
func (c *CommandBuffer) CopyImageToBuffer(src rhi.Image, dst rhi.Buffer, regions ...rhi.BufferImageCopy) error {
	if err := c.recording("copy image to buffer"); err != nil {
		return err
	}
	im, err := unwrap[*Image]("copy image to buffer", src)
	if err != nil {
		return err
	}
	b, err := unwrap[*Buffer]("copy image to buffer", dst)
	if err != nil {
		return err
	}
	copies, err := textureCopies(b, im, regions)
	if err != nil {
		return fmt.Errorf("copy image to buffer: %w", err)
	}
	c.encoder.CopyTextureToBuffer(im.texture, b.buffer, copies)
	return nil
}

// textureCopies validates buffer/image regions and builds the hal copies.
// With no regions mip 0 is copied whole at the aligned row pitch.
func textureCopies(b *Buffer, im *Image, regions []rhi.BufferImageCopy) ([]hal.BufferTextureCopy, error) {
	bpt := im.desc.Format.BytesPerTexel()
	if bpt == 0 {
		return nil, fmt.Errorf("format %s has no texel layout: %w", im.desc.Format, rhi.ErrInvalidSize)
	}
	if len(regions) == 0 {
		w, _, _ := im.mipExtent(0)
		regions = []rhi.BufferImageCopy{{BytesPerRow: pixels.AlignedRowPitch(w * bpt)}}
	}
	copies := make([]hal.BufferTextureCopy, len(regions))
	for i, r := range regions {
		if r.MipLevel >= im.desc.MipLevels {
			return nil, fmt.Errorf("region %d: mip %d of %d: %w", i, r.MipLevel, im.desc.MipLevels, rhi.ErrInvalidSize)
		}
		ext := r.Extent
		if ext.Width == 0 && ext.Height == 0 {
			w, h, layers := im.mipExtent(r.MipLevel)
			ext = rhi.Extent3D{Width: w, Height: h, Depth: layers}
		}
		if ext.Depth == 0 {
			ext.Depth = 1
		}
		rows := r.RowsPerImage
		if rows == 0 {
			rows = ext.Height
		}
		if r.BytesPerRow == 0 || r.BytesPerRow%pixels.RowPitchAlignment != 0 {
			return nil, fmt.Errorf("region %d: bytes per row %d is not a multiple of %d: %w",
				i, r.BytesPerRow, pixels.RowPitchAlignment, rhi.ErrInvalidSize)
		}
		if r.BytesPerRow < ext.Width*bpt || rows < ext.Height {
			return nil, fmt.Errorf("region %d: layout smaller than extent: %w", i, rhi.ErrInvalidSize)
		}
		span := uint64(r.BytesPerRow)*(uint64(rows)*uint64(ext.Depth-1)+uint64(ext.Height-1)) + uint64(ext.Width*bpt)
		if err := checkRange(r.BufferOffset, span, b.size); err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		copies[i] = hal.BufferTextureCopy{
			BufferLayout: hal.ImageDataLayout{Offset: r.BufferOffset, BytesPerRow: r.BytesPerRow, RowsPerImage: rows},
			TextureBase: hal.ImageCopyTexture{
				Texture:  im.texture,
				MipLevel: r.MipLevel,
				Origin:   hal.Origin3D{X: r.Origin.X, Y: r.Origin.Y, Z: r.Origin.Z},
				Aspect:   gputypes.TextureAspectAll,
			},
			Size: hal.Extent3D{Width: ext.Width, Height: ext.Height, DepthOrArrayLayers: ext.Depth},
		}
	}
	return copies, nil
}

// Barrier transitions images between resource states.
func (c *CommandBuffer) Barrier(barriers ...rhi.ImageBarrier) error {
	if err := c.recording("barrier"); err != nil {
		return err
	}
	if len(barriers) == 0 {
		return nil
	}
	native := make([]hal.TextureBarrier, len(barriers))
	for i, b := range barriers {
		im, err := unwrap[*Image]("barrier", b.Image)
		if err != nil {
			return err
		}
		native[i] = hal.TextureBarrier{
			Texture: im.texture,
			Usage: hal.TextureUsageTransition{
				OldUsage: convertState(b.Before),
				NewUsage: convertState(b.After),
			},
		}
	}
	c.encoder.TransitionTextures(native)
	return nil
}

// free releases the native list and marks the buffer Freed.
func (c *CommandBuffer) free() {
	if !c.release() {
		return
	}
	if c.state == rhi.CommandBufferRecording {
		c.encoder.DiscardEncoding()
	}
	if c.cmd != nil {
		c.dev.device.FreeCommandBuffer(c.cmd)
		c.cmd = nil
	}
	c.encoder.Destroy()
	c.pass = nil
	c.state = rhi.CommandBufferFreed
}

// Destroy frees the command buffer and removes it from its pool.
func (c *CommandBuffer) Destroy() {
	if c.pool != nil {
		c.pool.forget(c)
	}
	c.free()
}
