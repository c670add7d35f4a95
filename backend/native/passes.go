// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// BeginComputePass opens a compute pass. The command buffer is locked until
// the pass ends.
func (c *CommandBuffer) BeginComputePass(label string) (rhi.ComputePass, error) {
	if err := c.recording("begin compute pass"); err != nil {
		return nil, err
	}
	pass := c.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	p := &ComputePass{cb: c, pass: pass}
	c.pass = p
	return p, nil
}

// BeginRenderPass opens a render pass over desc's attachments. The viewport
// and scissor start out covering the first attachment.
func (c *CommandBuffer) BeginRenderPass(desc *rhi.RenderPassDesc) (rhi.RenderPass, error) {
	if desc == nil {
		return nil, fmt.Errorf("begin render pass: %w", rhi.ErrNilDescriptor)
	}
	if err := c.recording("begin render pass"); err != nil {
		return nil, err
	}
	if len(desc.Colors) == 0 && desc.Depth == nil {
		return nil, fmt.Errorf("begin render pass: no attachments: %w", rhi.ErrNilDescriptor)
	}

	var width, height uint32
	halDesc := &hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: make([]hal.RenderPassColorAttachment, len(desc.Colors)),
	}
	for i, ca := range desc.Colors {
		view, err := unwrap[*ImageView]("begin render pass", ca.View)
		if err != nil {
			return nil, err
		}
		att := hal.RenderPassColorAttachment{
			View:    view.view,
			LoadOp:  convertLoadOp(ca.Load),
			StoreOp: convertStoreOp(ca.Store),
			ClearValue: gputypes.Color{
				R: ca.ClearColor.R, G: ca.ClearColor.G, B: ca.ClearColor.B, A: ca.ClearColor.A,
			},
		}
		if ca.Resolve != nil {
			resolve, err := unwrap[*ImageView]("begin render pass", ca.Resolve)
			if err != nil {
				return nil, err
			}
			att.ResolveTarget = resolve.view
		}
		halDesc.ColorAttachments[i] = att
		if i == 0 {
			width, height = view.extent()
		}
	}
	if desc.Depth != nil {
		view, err := unwrap[*ImageView]("begin render pass", desc.Depth.View)
		if err != nil {
			return nil, err
		}
		ds := &hal.RenderPassDepthStencilAttachment{
			View:            view.view,
			DepthLoadOp:     convertLoadOp(desc.Depth.Load),
			DepthStoreOp:    convertStoreOp(desc.Depth.Store),
			DepthClearValue: desc.Depth.ClearDepth,
		}
		if view.format == rhi.FormatDepth24PlusStencil8 {
			ds.StencilLoadOp = gputypes.LoadOpClear
			ds.StencilStoreOp = gputypes.StoreOpDiscard
			ds.StencilClearValue = 0
		}
		halDesc.DepthStencilAttachment = ds
		if len(desc.Colors) == 0 {
			width, height = view.extent()
		}
	}

	pass := c.encoder.BeginRenderPass(halDesc)
	pass.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	pass.SetScissorRect(0, 0, width, height)
	p := &RenderPass{cb: c, pass: pass}
	c.pass = p
	return p, nil
}

// ComputePass records dispatches.
type ComputePass struct {
	cb       *CommandBuffer
	pass     hal.ComputePassEncoder
	pipeline bool
	done     bool
}

var _ rhi.ComputePass = (*ComputePass)(nil)

func (p *ComputePass) ended() bool { return p.done }

// SetPipeline binds a compute pipeline.
func (p *ComputePass) SetPipeline(pipeline rhi.Pipeline) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	pl, err := unwrap[*Pipeline]("set compute pipeline", pipeline)
	if err != nil {
		return err
	}
	if pl.kind != rhi.PipelineCompute {
		return fmt.Errorf("set compute pipeline %q: %w", pl.label, ErrPipelineKind)
	}
	p.pass.SetPipeline(pl.compute)
	p.pipeline = true
	return nil
}

// SetDescriptorSet binds set at group index.
func (p *ComputePass) SetDescriptorSet(index uint32, set rhi.DescriptorSet) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	group, err := bindableGroup(set)
	if err != nil {
		return err
	}
	p.pass.SetBindGroup(index, group, nil)
	return nil
}

// Dispatch records a dispatch. It is dropped when the pass has ended or no
// pipeline is bound.
func (p *ComputePass) Dispatch(x, y, z uint32) {
	if p.done || !p.pipeline {
		return
	}
	p.pass.Dispatch(x, y, z)
}

// End closes the pass and unlocks the command buffer.
func (p *ComputePass) End() error {
	if p.done {
		return rhi.ErrPassEnded
	}
	p.pass.End()
	p.done = true
	return nil
}

// RenderPass records draws.
type RenderPass struct {
	cb       *CommandBuffer
	pass     hal.RenderPassEncoder
	pipeline bool
	done     bool
}

var _ rhi.RenderPass = (*RenderPass)(nil)

func (p *RenderPass) ended() bool { return p.done }

// SetPipeline binds a graphics pipeline.
func (p *RenderPass) SetPipeline(pipeline rhi.Pipeline) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	pl, err := unwrap[*Pipeline]("set render pipeline", pipeline)
	if err != nil {
		return err
	}
	if pl.kind != rhi.PipelineGraphics {
		return fmt.Errorf("set render pipeline %q: %w", pl.label, ErrPipelineKind)
	}
	p.pass.SetPipeline(pl.render)
	p.pipeline = true
	return nil
}

// SetDescriptorSet binds set at group index.
func (p *RenderPass) SetDescriptorSet(index uint32, set rhi.DescriptorSet) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	group, err := bindableGroup(set)
	if err != nil {
		return err
	}
	p.pass.SetBindGroup(index, group, nil)
	return nil
}

// SetVertexBuffer binds buf to a vertex buffer slot.
func (p *RenderPass) SetVertexBuffer(slot uint32, buf rhi.Buffer, offset uint64) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	b, err := unwrap[*Buffer]("set vertex buffer", buf)
	if err != nil {
		return err
	}
	if offset >= b.size {
		return fmt.Errorf("set vertex buffer %q: offset %d: %w", b.label, offset, rhi.ErrInvalidSize)
	}
	p.pass.SetVertexBuffer(slot, b.buffer, offset)
	return nil
}

// SetIndexBuffer binds buf as the index buffer.
func (p *RenderPass) SetIndexBuffer(buf rhi.Buffer, format rhi.IndexFormat, offset uint64) error {
	if p.done {
		return rhi.ErrPassEnded
	}
	b, err := unwrap[*Buffer]("set index buffer", buf)
	if err != nil {
		return err
	}
	if offset >= b.size {
		return fmt.Errorf("set index buffer %q: offset %d: %w", b.label, offset, rhi.ErrInvalidSize)
	}
	p.pass.SetIndexBuffer(b.buffer, convertIndexFormat(format), offset)
	return nil
}

// SetViewport sets the viewport transform.
func (p *RenderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	if p.done {
		return
	}
	p.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
}

// SetScissor sets the scissor rectangle.
func (p *RenderPass) SetScissor(x, y, width, height uint32) {
	if p.done {
		return
	}
	p.pass.SetScissorRect(x, y, width, height)
}

// Draw records a non-indexed draw. It is dropped without a pipeline.
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.done || !p.pipeline {
		return
	}
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed records an indexed draw. It is dropped without a pipeline.
func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.done || !p.pipeline {
		return
	}
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// End closes the pass and unlocks the command buffer.
func (p *RenderPass) End() error {
	if p.done {
		return rhi.ErrPassEnded
	}
	p.pass.End()
	p.done = true
	return nil
}

func bindableGroup(set rhi.DescriptorSet) (hal.BindGroup, error) {
	ds, err := unwrap[*DescriptorSet]("set descriptor set", set)
	if err != nil {
		return nil, err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.group == nil {
		return nil, fmt.Errorf("set descriptor set %q: %w", ds.label, rhi.ErrDescriptorSetIncomplete)
	}
	return ds.group, nil
}
