// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/rhi"
)

const testComputeWGSL = `@compute @workgroup_size(1) fn main() {}`

const testGraphicsWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

func newTestShader(t *testing.T, d *Device, src string) rhi.ShaderModule {
	t.Helper()
	m, err := d.CreateShaderModule(&rhi.ShaderDesc{Label: "test shader", WGSL: src})
	if err != nil {
		t.Fatalf("CreateShaderModule failed: %v", err)
	}
	t.Cleanup(m.Destroy)
	return m
}

func newTestPipelineLayout(t *testing.T, d *Device) rhi.PipelineLayout {
	t.Helper()
	l, err := d.CreatePipelineLayout(&rhi.PipelineLayoutDesc{Label: "test layout"})
	if err != nil {
		t.Fatalf("CreatePipelineLayout failed: %v", err)
	}
	t.Cleanup(l.Destroy)
	return l
}

func TestShaderSource(t *testing.T) {
	d := newTestDevice(t)

	if _, err := d.CreateShaderModule(&rhi.ShaderDesc{}); !errors.Is(err, ErrShaderSource) {
		t.Errorf("empty source error = %v, want ErrShaderSource", err)
	}
	both := &rhi.ShaderDesc{WGSL: testComputeWGSL, SPIRV: []uint32{0x07230203}}
	if _, err := d.CreateShaderModule(both); !errors.Is(err, ErrShaderSource) {
		t.Errorf("two sources error = %v, want ErrShaderSource", err)
	}

	_, err := d.CreateShaderModule(&rhi.ShaderDesc{Label: "broken", WGSL: "fn main( {"})
	if err == nil {
		t.Fatal("invalid WGSL should fail")
	}
	if rhi.StatusOf(err) != rhi.StatusInvalidArg {
		t.Errorf("StatusOf = %s, want %s", rhi.StatusOf(err), rhi.StatusInvalidArg)
	}
}

func TestShaderCodeHash(t *testing.T) {
	d := newTestDevice(t)
	a := newTestShader(t, d, testComputeWGSL).(*ShaderModule)
	b := newTestShader(t, d, testComputeWGSL).(*ShaderModule)
	c := newTestShader(t, d, testGraphicsWGSL).(*ShaderModule)

	if a.codeHash != b.codeHash {
		t.Error("identical sources hash differently")
	}
	if a.codeHash == c.codeHash {
		t.Error("different sources hash the same")
	}
	if hashSource(&rhi.ShaderDesc{SPIRV: []uint32{1, 2}}) == hashSource(&rhi.ShaderDesc{SPIRV: []uint32{2, 1}}) {
		t.Error("SPIR-V word order does not affect the hash")
	}
}

func TestCreateSampler(t *testing.T) {
	d := newTestDevice(t)

	tests := []struct {
		name    string
		desc    rhi.SamplerDesc
		wantErr bool
	}{
		{"default", rhi.SamplerDesc{Label: "nearest"}, false},
		{"anisotropic", rhi.SamplerDesc{MinFilter: rhi.FilterLinear, MagFilter: rhi.FilterLinear, MipFilter: rhi.FilterLinear, MaxAnisotropy: 16}, false},
		{"comparison", rhi.SamplerDesc{Compare: rhi.CompareLessEqual, AddressU: rhi.AddressRepeat}, false},
		{"lod range", rhi.SamplerDesc{LodMinClamp: 2, LodMaxClamp: 4}, false},
		{"negative lod", rhi.SamplerDesc{LodMinClamp: -1}, true},
		{"inverted lod", rhi.SamplerDesc{LodMinClamp: 5, LodMaxClamp: 2}, true},
		{"anisotropy too high", rhi.SamplerDesc{MaxAnisotropy: 17}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := d.CreateSampler(&tt.desc)
			if tt.wantErr {
				if !errors.Is(err, rhi.ErrInvalidSize) {
					t.Errorf("error = %v, want ErrInvalidSize", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSampler failed: %v", err)
			}
			if s.Label() != tt.desc.Label {
				t.Errorf("Label() = %q, want %q", s.Label(), tt.desc.Label)
			}
			s.Destroy()
			s.Destroy()
		})
	}
}

func TestComputePipeline(t *testing.T) {
	d := newTestDevice(t)
	layout := newTestPipelineLayout(t, d)
	cs := newTestShader(t, d, testComputeWGSL)

	p, err := d.CreateComputePipeline(&rhi.ComputePipelineDesc{Label: "fill", Layout: layout, Shader: cs})
	if err != nil {
		t.Fatalf("CreateComputePipeline failed: %v", err)
	}
	defer p.Destroy()
	if p.Kind() != rhi.PipelineCompute {
		t.Errorf("Kind() = %v, want compute", p.Kind())
	}

	cb := newTestCommandBuffer(t, d)
	if err := cb.Begin(); err != nil {
		t.Fatal(err)
	}
	target, err := newTestImage(t, d, rhi.FormatRGBA8Unorm, 8, 8).CreateView(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Destroy()
	rp, err := cb.BeginRenderPass(&rhi.RenderPassDesc{Colors: []rhi.ColorAttachment{{View: target}}})
	if err != nil {
		t.Fatalf("BeginRenderPass failed: %v", err)
	}
	if err := rp.SetPipeline(p); !errors.Is(err, ErrPipelineKind) {
		t.Errorf("compute pipeline in render pass error = %v, want ErrPipelineKind", err)
	}
	if err := rp.End(); err != nil {
		t.Fatal(err)
	}
	pass, err := cb.BeginComputePass("fill")
	if err != nil {
		t.Fatal(err)
	}
	if err := pass.SetPipeline(p); err != nil {
		t.Errorf("SetPipeline failed: %v", err)
	}
	pass.Dispatch(1, 1, 1)
	if err := pass.End(); err != nil {
		t.Fatal(err)
	}
	if err := pass.SetPipeline(p); !errors.Is(err, rhi.ErrPassEnded) {
		t.Errorf("SetPipeline after End error = %v, want ErrPassEnded", err)
	}
	cb.Discard()
}

func TestComputePipelineForeignShader(t *testing.T) {
	d := newTestDevice(t)
	layout := newTestPipelineLayout(t, d)

	_, err := d.CreateComputePipeline(&rhi.ComputePipelineDesc{Layout: layout})
	if !errors.Is(err, rhi.ErrForeignResource) {
		t.Errorf("nil shader error = %v, want ErrForeignResource", err)
	}
}

func TestGraphicsPipeline(t *testing.T) {
	d := newTestDevice(t)
	layout := newTestPipelineLayout(t, d)
	m := newTestShader(t, d, testGraphicsWGSL)

	desc := rhi.GraphicsPipelineDesc{
		Label:          "quad",
		Layout:         layout,
		VertexShader:   m,
		VertexEntry:    "vs_main",
		FragmentShader: m,
		FragmentEntry:  "fs_main",
		ColorTargets:   []rhi.ColorTarget{{Format: rhi.FormatBGRA8Unorm, Blend: true}},
		DepthStencil:   &rhi.DepthStencilTarget{Format: rhi.FormatDepth32Float, DepthWrite: true, DepthCompare: rhi.CompareLess},
		Topology:       rhi.TopologyTriangleStrip,
		CullMode:       rhi.CullBack,
	}
	p, err := d.CreateGraphicsPipeline(&desc)
	if err != nil {
		t.Fatalf("CreateGraphicsPipeline failed: %v", err)
	}
	defer p.Destroy()
	if p.Kind() != rhi.PipelineGraphics {
		t.Errorf("Kind() = %v, want graphics", p.Kind())
	}

	noTargets := desc
	noTargets.ColorTargets = nil
	noTargets.DepthStencil = nil
	if _, err := d.CreateGraphicsPipeline(&noTargets); !errors.Is(err, rhi.ErrNilDescriptor) {
		t.Errorf("no targets error = %v, want ErrNilDescriptor", err)
	}

	noFragment := desc
	noFragment.FragmentShader = nil
	if _, err := d.CreateGraphicsPipeline(&noFragment); !errors.Is(err, rhi.ErrNilDescriptor) {
		t.Errorf("color targets without fragment error = %v, want ErrNilDescriptor", err)
	}

	badDepth := desc
	badDepth.DepthStencil = &rhi.DepthStencilTarget{Format: rhi.FormatRGBA8Unorm}
	if _, err := d.CreateGraphicsPipeline(&badDepth); !errors.Is(err, rhi.ErrInvalidSize) {
		t.Errorf("color depth format error = %v, want ErrInvalidSize", err)
	}

	depthOnly := desc
	depthOnly.FragmentShader = nil
	depthOnly.ColorTargets = nil
	dp, err := d.CreateGraphicsPipeline(&depthOnly)
	if err != nil {
		t.Fatalf("depth-only pipeline failed: %v", err)
	}
	dp.Destroy()
}

func TestDepthStencilState(t *testing.T) {
	ds := depthStencilState(&rhi.DepthStencilTarget{Format: rhi.FormatDepth32Float})
	if ds.DepthCompare != convertCompare(rhi.CompareAlways) {
		t.Errorf("DepthCompare = %v, want always for CompareNone", ds.DepthCompare)
	}
	if ds.StencilWriteMask != 0 || ds.StencilReadMask != 0 {
		t.Error("stencil must be disabled")
	}
}

func TestColorTargets(t *testing.T) {
	got := colorTargets([]rhi.ColorTarget{{Format: rhi.FormatRGBA8Unorm}, {Format: rhi.FormatBGRA8Unorm, Blend: true}})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Blend != nil {
		t.Error("opaque target has a blend state")
	}
	if got[1].Blend == nil {
		t.Error("blended target has no blend state")
	}
}

func TestEntryPoint(t *testing.T) {
	if entryPoint("") != "main" {
		t.Errorf(`entryPoint("") = %q, want main`, entryPoint(""))
	}
	if entryPoint("cs_fill") != "cs_fill" {
		t.Errorf("entryPoint kept name = %q", entryPoint("cs_fill"))
	}
}

func TestPipelineCache(t *testing.T) {
	d := newTestDevice(t)
	layout := newTestPipelineLayout(t, d)
	cs := newTestShader(t, d, testComputeWGSL)
	cache := d.NewPipelineCache()

	desc := &rhi.ComputePipelineDesc{Label: "fill", Layout: layout, Shader: cs}
	first, err := cache.ComputePipeline(desc)
	if err != nil {
		t.Fatalf("ComputePipeline failed: %v", err)
	}
	second, err := cache.ComputePipeline(&rhi.ComputePipelineDesc{Label: "fill again", Layout: layout, Shader: cs})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("equal descriptors returned different pipelines")
	}
	hits, misses := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1 and 1", hits, misses)
	}

	other, err := cache.ComputePipeline(&rhi.ComputePipelineDesc{Layout: newTestPipelineLayout(t, d), Shader: cs})
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("different layouts share a pipeline")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}

	// Cached pipelines survive Destroy until the cache releases them.
	first.Destroy()
	if err := first.(*Pipeline).alive(); err != nil {
		t.Errorf("cached pipeline destroyed by Destroy: %v", err)
	}
	cache.DestroyAll()
	if err := first.(*Pipeline).alive(); !errors.Is(err, rhi.ErrDestroyed) {
		t.Errorf("alive() after DestroyAll = %v, want ErrDestroyed", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() after DestroyAll = %d", cache.Len())
	}
	if hits, misses := cache.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats() after DestroyAll = %d, %d", hits, misses)
	}
}

func TestPipelineCacheGraphics(t *testing.T) {
	d := newTestDevice(t)
	layout := newTestPipelineLayout(t, d)
	m := newTestShader(t, d, testGraphicsWGSL)
	cache := d.NewPipelineCache()
	defer cache.DestroyAll()

	base := rhi.GraphicsPipelineDesc{
		Layout:         layout,
		VertexShader:   m,
		VertexEntry:    "vs_main",
		FragmentShader: m,
		FragmentEntry:  "fs_main",
		ColorTargets:   []rhi.ColorTarget{{Format: rhi.FormatRGBA8Unorm}},
	}
	blended := base
	blended.ColorTargets = []rhi.ColorTarget{{Format: rhi.FormatRGBA8Unorm, Blend: true}}

	k1, err := hashGraphicsDesc(&base)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := hashGraphicsDesc(&blended)
	if err != nil {
		t.Fatal(err)
	}
	if k1 == k2 {
		t.Error("blend state does not affect the key")
	}
	msaa := base
	msaa.Samples = 1
	if k3, _ := hashGraphicsDesc(&msaa); k3 != k1 {
		t.Error("Samples 0 and 1 should share a key")
	}

	a, err := cache.GraphicsPipeline(&base)
	if err != nil {
		t.Fatalf("GraphicsPipeline failed: %v", err)
	}
	b, err := cache.GraphicsPipeline(&blended)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("different descriptors share a pipeline")
	}
	if _, err := cache.GraphicsPipeline(nil); !errors.Is(err, rhi.ErrNilDescriptor) {
		t.Errorf("nil desc error = %v, want ErrNilDescriptor", err)
	}
}
