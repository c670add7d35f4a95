// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// defaultEntryPoint is used when a pipeline descriptor names no entry point.
const defaultEntryPoint = "main"

// PipelineLayout is a root signature built from descriptor set layouts.
type PipelineLayout struct {
	resource
	dev    *Device
	layout hal.PipelineLayout

	// id identifies the layout in pipeline cache keys.
	id uint64
}

var layoutIDs atomic.Uint64

var _ rhi.PipelineLayout = (*PipelineLayout)(nil)

// CreatePipelineLayout creates a pipeline layout. Set i of the layout is
// bound with SetDescriptorSet(i, ...).
func (d *Device) CreatePipelineLayout(desc *rhi.PipelineLayoutDesc) (rhi.PipelineLayout, error) {
	if desc == nil {
		return nil, fmt.Errorf("create pipeline layout: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	groups := make([]hal.BindGroupLayout, len(desc.SetLayouts))
	for i, sl := range desc.SetLayouts {
		l, err := unwrap[*DescriptorSetLayout]("create pipeline layout", sl)
		if err != nil {
			return nil, err
		}
		groups[i] = l.layout
	}
	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, rhi.Native("create root signature", err)
	}
	return &PipelineLayout{resource: resource{label: desc.Label}, dev: d, layout: layout, id: layoutIDs.Add(1)}, nil
}

// Destroy releases the native layout.
func (l *PipelineLayout) Destroy() {
	if !l.release() {
		return
	}
	l.dev.device.DestroyPipelineLayout(l.layout)
}

// Pipeline is a pipeline state object. Exactly one of compute and render
// is set, matching kind.
type Pipeline struct {
	resource
	dev     *Device
	kind    rhi.PipelineKind
	compute hal.ComputePipeline
	render  hal.RenderPipeline

	// cached pipelines are owned by a PipelineCache and ignore Destroy.
	cached bool
}

var _ rhi.Pipeline = (*Pipeline)(nil)

// Kind reports whether the pipeline is compute or graphics.
func (p *Pipeline) Kind() rhi.PipelineKind { return p.kind }

// CreateComputePipeline creates a compute pipeline state object.
func (d *Device) CreateComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.Pipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("create compute pipeline: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	layout, err := unwrap[*PipelineLayout]("create compute pipeline", desc.Layout)
	if err != nil {
		return nil, err
	}
	module, err := unwrap[*ShaderModule]("create compute pipeline", desc.Shader)
	if err != nil {
		return nil, err
	}

	cp, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.layout,
		Compute: hal.ComputeState{
			Module:     module.module,
			EntryPoint: entryPoint(desc.EntryPoint),
		},
	})
	if err != nil {
		return nil, rhi.Native("create compute pipeline state", err)
	}
	d.log().Debug("native: compute pipeline created", "label", desc.Label)
	return &Pipeline{resource: resource{label: desc.Label}, dev: d, kind: rhi.PipelineCompute, compute: cp}, nil
}

// CreateGraphicsPipeline creates a graphics pipeline state object. The
// fragment shader may be nil for depth-only pipelines.
func (d *Device) CreateGraphicsPipeline(desc *rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("create graphics pipeline: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	layout, err := unwrap[*PipelineLayout]("create graphics pipeline", desc.Layout)
	if err != nil {
		return nil, err
	}
	vs, err := unwrap[*ShaderModule]("create graphics pipeline", desc.VertexShader)
	if err != nil {
		return nil, err
	}
	if len(desc.ColorTargets) == 0 && desc.DepthStencil == nil {
		return nil, fmt.Errorf("create graphics pipeline %q: no color or depth target: %w", desc.Label, rhi.ErrNilDescriptor)
	}

	hd := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout.layout,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: entryPoint(desc.VertexEntry),
			Buffers:    convertVertexBuffers(desc.VertexBuffers),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: convertTopology(desc.Topology),
			CullMode: convertCullMode(desc.CullMode),
		},
		Multisample: gputypes.MultisampleState{
			Count: max(desc.Samples, 1),
			Mask:  0xFFFFFFFF,
		},
	}

	if desc.FragmentShader != nil {
		fs, err := unwrap[*ShaderModule]("create graphics pipeline", desc.FragmentShader)
		if err != nil {
			return nil, err
		}
		hd.Fragment = &hal.FragmentState{
			Module:     fs.module,
			EntryPoint: entryPoint(desc.FragmentEntry),
			Targets:    colorTargets(desc.ColorTargets),
		}
	} else if len(desc.ColorTargets) > 0 {
		return nil, fmt.Errorf("create graphics pipeline %q: color targets without a fragment shader: %w", desc.Label, rhi.ErrNilDescriptor)
	}

	if ds := desc.DepthStencil; ds != nil {
		if !ds.Format.IsDepth() {
			return nil, fmt.Errorf("create graphics pipeline %q: %s is not a depth format: %w", desc.Label, ds.Format, rhi.ErrInvalidSize)
		}
		hd.DepthStencil = depthStencilState(ds)
	}

	rp, err := d.device.CreateRenderPipeline(hd)
	if err != nil {
		return nil, rhi.Native("create graphics pipeline state", err)
	}
	d.log().Debug("native: graphics pipeline created", "label", desc.Label, "targets", len(desc.ColorTargets))
	return &Pipeline{resource: resource{label: desc.Label}, dev: d, kind: rhi.PipelineGraphics, render: rp}, nil
}

func entryPoint(name string) string {
	if name == "" {
		return defaultEntryPoint
	}
	return name
}

// colorTargets converts color targets. Blending targets use premultiplied
// alpha.
func colorTargets(targets []rhi.ColorTarget) []gputypes.ColorTargetState {
	out := make([]gputypes.ColorTargetState, len(targets))
	for i, t := range targets {
		out[i] = gputypes.ColorTargetState{
			Format:    convertFormat(t.Format),
			WriteMask: gputypes.ColorWriteMaskAll,
		}
		if t.Blend {
			premulBlend := gputypes.BlendStatePremultiplied()
			out[i].Blend = &premulBlend
		}
	}
	return out
}

// depthStencilState builds a depth state with stencil testing disabled.
func depthStencilState(ds *rhi.DepthStencilTarget) *hal.DepthStencilState {
	compare := convertCompare(ds.DepthCompare)
	if ds.DepthCompare == rhi.CompareNone {
		compare = gputypes.CompareFunctionAlways
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            convertFormat(ds.Format),
		DepthWriteEnabled: ds.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0x00,
		StencilWriteMask:  0x00,
	}
}

// Destroy releases the native pipeline. Pipelines handed out by a
// PipelineCache are released by the cache instead.
func (p *Pipeline) Destroy() {
	if p.cached {
		return
	}
	p.destroy()
}

func (p *Pipeline) destroy() {
	if !p.release() {
		return
	}
	switch p.kind {
	case rhi.PipelineCompute:
		p.dev.device.DestroyComputePipeline(p.compute)
	case rhi.PipelineGraphics:
		p.dev.device.DestroyRenderPipeline(p.render)
	}
}
