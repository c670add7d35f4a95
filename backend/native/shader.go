// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/shader"
	"github.com/gogpu/wgpu/hal"
)

// ShaderModule is compiled shader bytecode.
type ShaderModule struct {
	resource
	dev    *Device
	module hal.ShaderModule

	// codeHash identifies the source in pipeline cache keys.
	codeHash uint64
}

var _ rhi.ShaderModule = (*ShaderModule)(nil)

// CreateShaderModule compiles desc. WGSL is validated up front so source
// errors surface here rather than at pipeline creation. The Vulkan driver
// is handed SPIR-V compiled from the WGSL.
func (d *Device) CreateShaderModule(desc *rhi.ShaderDesc) (rhi.ShaderModule, error) {
	if desc == nil {
		return nil, fmt.Errorf("create shader module: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	if (desc.WGSL == "") == (len(desc.SPIRV) == 0) {
		return nil, fmt.Errorf("create shader module %q: %w", desc.Label, ErrShaderSource)
	}

	var src hal.ShaderSource
	switch {
	case len(desc.SPIRV) > 0:
		src.SPIRV = desc.SPIRV
	case d.api == rhi.APIVulkan:
		words, err := shader.CompileWGSL(desc.WGSL)
		if err != nil {
			return nil, rhi.NativeStatus("compile shader", rhi.StatusInvalidArg, err)
		}
		src.SPIRV = words
	default:
		if _, err := shader.Lower(desc.WGSL); err != nil {
			return nil, rhi.NativeStatus("compile shader", rhi.StatusInvalidArg, err)
		}
		src.WGSL = desc.WGSL
	}

	m, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: desc.Label, Source: src})
	if err != nil {
		return nil, rhi.Native("create shader module", err)
	}
	d.log().Debug("native: shader module created", "label", desc.Label, "spirv", len(src.SPIRV) > 0)
	return &ShaderModule{resource: resource{label: desc.Label}, dev: d, module: m, codeHash: hashSource(desc)}, nil
}

// Destroy releases the native module.
func (m *ShaderModule) Destroy() {
	if !m.release() {
		return
	}
	m.dev.device.DestroyShaderModule(m.module)
}
