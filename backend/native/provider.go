// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Provider exposes a Device to libraries that take a
// gpucontext.DeviceProvider. It also implements HalDevice and HalQueue, so
// FromProvider can adopt it.
type Provider struct {
	dev *Device
}

var _ gpucontext.DeviceProvider = (*Provider)(nil)

// Provider returns a gpucontext bridge for d. The bridge does not own d.
func (d *Device) Provider() *Provider { return &Provider{dev: d} }

// Device returns the device handle.
func (p *Provider) Device() gpucontext.Device { return providerDevice{p.dev} }

// Queue returns the native queue.
func (p *Provider) Queue() gpucontext.Queue { return p.dev.sub.queue }

// Adapter returns nil. Adopted devices carry no adapter.
func (p *Provider) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo describes the adapter the device was opened on. Adopted
// devices report an unnamed adapter of unknown type.
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: p.dev.info.Name,
		Type: adapterType(p.dev.info.DeviceType),
	}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// SurfaceFormat returns the swap chain format D3D12 presents in.
func (p *Provider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// HalDevice returns the hal device.
func (p *Provider) HalDevice() any { return p.dev.device }

// HalQueue returns the hal queue.
func (p *Provider) HalQueue() any { return p.dev.sub.queue }

// providerDevice adapts Device to gpucontext.Device.
type providerDevice struct {
	dev *Device
}

// Poll waits for the queue to drain when wait is set.
func (pd providerDevice) Poll(wait bool) {
	if !wait {
		return
	}
	if err := pd.dev.WaitIdle(context.Background()); err != nil {
		pd.dev.log().Warn("native: poll", "err", err)
	}
}

// Destroy destroys the device.
func (pd providerDevice) Destroy() { pd.dev.Destroy() }
