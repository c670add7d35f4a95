// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
)

// convertBufferUsage maps rhi usage flags and the heap type onto hal usage.
// Default heap buffers are always copyable so Write and Read work on them.
func convertBufferUsage(usage rhi.BufferUsage, mem rhi.MemoryType) gputypes.BufferUsage {
	var result gputypes.BufferUsage

	if usage&rhi.BufferUsageMapRead != 0 {
		result |= gputypes.BufferUsageMapRead
	}
	if usage&rhi.BufferUsageMapWrite != 0 {
		result |= gputypes.BufferUsageMapWrite
	}
	if usage&rhi.BufferUsageCopySrc != 0 {
		result |= gputypes.BufferUsageCopySrc
	}
	if usage&rhi.BufferUsageCopyDst != 0 {
		result |= gputypes.BufferUsageCopyDst
	}
	if usage&rhi.BufferUsageIndex != 0 {
		result |= gputypes.BufferUsageIndex
	}
	if usage&rhi.BufferUsageVertex != 0 {
		result |= gputypes.BufferUsageVertex
	}
	if usage&rhi.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	if usage&rhi.BufferUsageStorage != 0 {
		result |= gputypes.BufferUsageStorage
	}
	if usage&rhi.BufferUsageIndirect != 0 {
		result |= gputypes.BufferUsageIndirect
	}

	switch mem {
	case rhi.MemoryUpload:
		result |= gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc
	case rhi.MemoryReadback:
		result |= gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	default:
		result |= gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	}
	return result
}

func convertImageUsage(usage rhi.ImageUsage) gputypes.TextureUsage {
	var result gputypes.TextureUsage
	if usage&rhi.ImageUsageCopySrc != 0 {
		result |= gputypes.TextureUsageCopySrc
	}
	if usage&rhi.ImageUsageCopyDst != 0 {
		result |= gputypes.TextureUsageCopyDst
	}
	if usage&rhi.ImageUsageSampled != 0 {
		result |= gputypes.TextureUsageTextureBinding
	}
	if usage&rhi.ImageUsageStorage != 0 {
		result |= gputypes.TextureUsageStorageBinding
	}
	if usage&rhi.ImageUsageRenderTarget != 0 {
		result |= gputypes.TextureUsageRenderAttachment
	}
	return result
}

func convertFormat(f rhi.Format) gputypes.TextureFormat {
	switch f {
	case rhi.FormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case rhi.FormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb
	case rhi.FormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case rhi.FormatBGRA8UnormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb
	case rhi.FormatR8Unorm:
		return gputypes.TextureFormatR8Unorm
	case rhi.FormatR32Float:
		return gputypes.TextureFormatR32Float
	case rhi.FormatRG32Float:
		return gputypes.TextureFormatRG32Float
	case rhi.FormatRGBA16Float:
		return gputypes.TextureFormatRGBA16Float
	case rhi.FormatRGBA32Float:
		return gputypes.TextureFormatRGBA32Float
	case rhi.FormatDepth32Float:
		return gputypes.TextureFormatDepth32Float
	case rhi.FormatDepth24PlusStencil8:
		return gputypes.TextureFormatDepth24PlusStencil8
	default:
		return gputypes.TextureFormatUndefined
	}
}

// formatFromNative maps a surface format back into rhi. Unknown formats
// become FormatUndefined.
func formatFromNative(f gputypes.TextureFormat) rhi.Format {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return rhi.FormatRGBA8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return rhi.FormatRGBA8UnormSRGB
	case gputypes.TextureFormatBGRA8Unorm:
		return rhi.FormatBGRA8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return rhi.FormatBGRA8UnormSRGB
	default:
		return rhi.FormatUndefined
	}
}

func convertImageDimension(d rhi.ImageDimension) gputypes.TextureDimension {
	switch d {
	case rhi.ImageDimension1D:
		return gputypes.TextureDimension1D
	case rhi.ImageDimension3D:
		return gputypes.TextureDimension3D
	default:
		return gputypes.TextureDimension2D
	}
}

// convertViewDimension resolves ViewDimensionDefault from the image shape.
func convertViewDimension(v rhi.ViewDimension, img rhi.ImageDesc) gputypes.TextureViewDimension {
	if v == rhi.ViewDimensionDefault {
		switch {
		case img.Dimension == rhi.ImageDimension1D:
			v = rhi.ViewDimension1D
		case img.Dimension == rhi.ImageDimension3D:
			v = rhi.ViewDimension3D
		case img.Size.Depth > 1:
			v = rhi.ViewDimension2DArray
		default:
			v = rhi.ViewDimension2D
		}
	}
	switch v {
	case rhi.ViewDimension1D:
		return gputypes.TextureViewDimension1D
	case rhi.ViewDimension2DArray:
		return gputypes.TextureViewDimension2DArray
	case rhi.ViewDimensionCube:
		return gputypes.TextureViewDimensionCube
	case rhi.ViewDimension3D:
		return gputypes.TextureViewDimension3D
	default:
		return gputypes.TextureViewDimension2D
	}
}

func convertFilter(f rhi.FilterMode) gputypes.FilterMode {
	if f == rhi.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func convertAddressMode(m rhi.AddressMode) gputypes.AddressMode {
	switch m {
	case rhi.AddressRepeat:
		return gputypes.AddressModeRepeat
	case rhi.AddressMirrorRepeat:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func convertCompare(c rhi.CompareFunction) gputypes.CompareFunction {
	switch c {
	case rhi.CompareNever:
		return gputypes.CompareFunctionNever
	case rhi.CompareLess:
		return gputypes.CompareFunctionLess
	case rhi.CompareEqual:
		return gputypes.CompareFunctionEqual
	case rhi.CompareLessEqual:
		return gputypes.CompareFunctionLessEqual
	case rhi.CompareGreater:
		return gputypes.CompareFunctionGreater
	case rhi.CompareNotEqual:
		return gputypes.CompareFunctionNotEqual
	case rhi.CompareGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case rhi.CompareAlways:
		return gputypes.CompareFunctionAlways
	default:
		return gputypes.CompareFunctionUndefined
	}
}

// convertLayoutBinding fills the one binding-layout pointer matching b.Type.
func convertLayoutBinding(b rhi.LayoutBinding) gputypes.BindGroupLayoutEntry {
	entry := gputypes.BindGroupLayoutEntry{Binding: b.Binding}
	if b.Stages&rhi.StageVertex != 0 {
		entry.Visibility |= gputypes.ShaderStageVertex
	}
	if b.Stages&rhi.StageFragment != 0 {
		entry.Visibility |= gputypes.ShaderStageFragment
	}
	if b.Stages&rhi.StageCompute != 0 {
		entry.Visibility |= gputypes.ShaderStageCompute
	}
	switch b.Type {
	case rhi.DescriptorUniformBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: b.MinBindingSize,
		}
	case rhi.DescriptorStorageBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeStorage,
			MinBindingSize: b.MinBindingSize,
		}
	case rhi.DescriptorReadOnlyStorageBuffer:
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: b.MinBindingSize,
		}
	case rhi.DescriptorSampler:
		entry.Sampler = &gputypes.SamplerBindingLayout{
			Type: gputypes.SamplerBindingTypeFiltering,
		}
	case rhi.DescriptorSampledImage:
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case rhi.DescriptorStorageImage:
		entry.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access:        gputypes.StorageTextureAccessWriteOnly,
			Format:        convertFormat(b.Format),
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	}
	return entry
}

func convertTopology(t rhi.PrimitiveTopology) gputypes.PrimitiveTopology {
	switch t {
	case rhi.TopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case rhi.TopologyLineList:
		return gputypes.PrimitiveTopologyLineList
	case rhi.TopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case rhi.TopologyPointList:
		return gputypes.PrimitiveTopologyPointList
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func convertCullMode(c rhi.CullMode) gputypes.CullMode {
	switch c {
	case rhi.CullFront:
		return gputypes.CullModeFront
	case rhi.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func convertVertexFormat(v rhi.VertexFormat) gputypes.VertexFormat {
	switch v {
	case rhi.VertexFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case rhi.VertexFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case rhi.VertexFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case rhi.VertexUint32:
		return gputypes.VertexFormatUint32
	default:
		return gputypes.VertexFormatFloat32
	}
}

func convertVertexBuffers(layouts []rhi.VertexBufferLayout) []gputypes.VertexBufferLayout {
	if len(layouts) == 0 {
		return nil
	}
	out := make([]gputypes.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		step := gputypes.VertexStepModeVertex
		if l.PerInstance {
			step = gputypes.VertexStepModeInstance
		}
		attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
		for j, a := range l.Attributes {
			attrs[j] = gputypes.VertexAttribute{
				Format:         convertVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.Location,
			}
		}
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: l.Stride,
			StepMode:    step,
			Attributes:  attrs,
		}
	}
	return out
}

func convertIndexFormat(f rhi.IndexFormat) gputypes.IndexFormat {
	if f == rhi.IndexUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func convertLoadOp(op rhi.LoadOp) gputypes.LoadOp {
	if op == rhi.LoadLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func convertStoreOp(op rhi.StoreOp) gputypes.StoreOp {
	if op == rhi.StoreDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

// convertState maps a barrier state onto the hal texture usage it implies.
// Presentable images are transitioned through the render target state.
func convertState(s rhi.ResourceState) gputypes.TextureUsage {
	switch s {
	case rhi.StateCopySrc:
		return gputypes.TextureUsageCopySrc
	case rhi.StateCopyDst:
		return gputypes.TextureUsageCopyDst
	case rhi.StateShaderRead:
		return gputypes.TextureUsageTextureBinding
	case rhi.StateStorage:
		return gputypes.TextureUsageStorageBinding
	case rhi.StateRenderTarget, rhi.StatePresent:
		return gputypes.TextureUsageRenderAttachment
	default:
		return 0
	}
}

func convertLimits(l gputypes.Limits) rhi.Limits {
	return rhi.Limits{
		MaxBufferSize:                    l.MaxBufferSize,
		MaxImageDimension2D:              l.MaxTextureDimension2D,
		MaxBindGroups:                    l.MaxBindGroups,
		MaxComputeWorkgroupSizeX:         l.MaxComputeWorkgroupSizeX,
		MaxComputeWorkgroupSizeY:         l.MaxComputeWorkgroupSizeY,
		MaxComputeWorkgroupSizeZ:         l.MaxComputeWorkgroupSizeZ,
		MaxComputeWorkgroupsPerDimension: l.MaxComputeWorkgroupsPerDimension,
	}
}
