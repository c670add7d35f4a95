// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// defaultLodMaxClamp stands in for an unbounded LOD range when the
// descriptor leaves LodMaxClamp zero.
const defaultLodMaxClamp = 32

// maxAnisotropy is the largest anisotropy D3D12 accepts.
const maxAnisotropy = 16

// Sampler is a sampler descriptor in a sampler heap.
type Sampler struct {
	resource
	dev     *Device
	sampler hal.Sampler
}

var _ rhi.Sampler = (*Sampler)(nil)

// CreateSampler creates a sampler. A zero LodMaxClamp samples every mip
// and a zero MaxAnisotropy means 1.
func (d *Device) CreateSampler(desc *rhi.SamplerDesc) (rhi.Sampler, error) {
	if desc == nil {
		return nil, fmt.Errorf("create sampler: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	lodMax := desc.LodMaxClamp
	if lodMax == 0 {
		lodMax = defaultLodMaxClamp
	}
	if desc.LodMinClamp < 0 || desc.LodMinClamp > lodMax {
		return nil, fmt.Errorf("create sampler %q: lod range [%g, %g]: %w", desc.Label, desc.LodMinClamp, lodMax, rhi.ErrInvalidSize)
	}
	aniso := max(desc.MaxAnisotropy, 1)
	if aniso > maxAnisotropy {
		return nil, fmt.Errorf("create sampler %q: anisotropy %d exceeds %d: %w", desc.Label, aniso, maxAnisotropy, rhi.ErrInvalidSize)
	}

	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: convertAddressMode(desc.AddressU),
		AddressModeV: convertAddressMode(desc.AddressV),
		AddressModeW: convertAddressMode(desc.AddressW),
		MagFilter:    convertFilter(desc.MagFilter),
		MinFilter:    convertFilter(desc.MinFilter),
		MipmapFilter: convertFilter(desc.MipFilter),
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  lodMax,
		Compare:      convertCompare(desc.Compare),
		Anisotropy:   aniso,
	})
	if err != nil {
		return nil, rhi.Native("create sampler", err)
	}
	return &Sampler{resource: resource{label: desc.Label}, dev: d, sampler: s}, nil
}

// Destroy releases the native sampler.
func (s *Sampler) Destroy() {
	if !s.release() {
		return
	}
	s.dev.device.DestroySampler(s.sampler)
}
