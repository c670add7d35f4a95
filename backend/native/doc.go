// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package native implements the rhi interfaces on top of gogpu/wgpu/hal.
//
// Every adapter owns exactly one hal handle:
//
//	rhi type            hal handle            D3D12 object
//	Device              hal.Device            ID3D12Device
//	Queue               hal.Queue             ID3D12CommandQueue
//	CommandPool         (encoder set)         ID3D12CommandAllocator
//	CommandBuffer       hal.CommandEncoder    ID3D12GraphicsCommandList
//	DescriptorSetLayout hal.BindGroupLayout   root parameter table
//	DescriptorPool      (slot budget)         ID3D12DescriptorHeap
//	DescriptorSet       hal.BindGroup         descriptor table
//	Buffer              hal.Buffer            ID3D12Resource (buffer)
//	Image               hal.Texture           ID3D12Resource (texture)
//	ImageView           hal.TextureView       SRV/UAV/RTV/DSV
//	Sampler             hal.Sampler           sampler descriptor
//	PipelineLayout      hal.PipelineLayout    ID3D12RootSignature
//	Pipeline            hal.*Pipeline         ID3D12PipelineState
//	Fence               hal.Fence             ID3D12Fence
//
// Each method fills in the hal descriptor from the rhi descriptor and calls
// the matching hal function once. Native failures are returned as
// *rhi.NativeError. Nothing is retried.
//
// Importing the package registers the "native" backend with rhi:
//
//	import _ "github.com/gogpu/rhi/backend/native"
//
// The D3D12 driver is preferred on Windows. Vulkan and Metal are used
// where D3D12 is unavailable.
package native
