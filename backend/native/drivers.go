// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// instanceCreator is satisfied by every registered hal backend and by
// noop.API.
type instanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// autoOrder is the driver preference for rhi.APIAuto. D3D12 comes first.
var autoOrder = []string{rhi.APIDX12, rhi.APIVulkan, rhi.APIMetal, rhi.APIGL}

var driverBackends = map[string]gputypes.Backend{
	rhi.APIDX12:   gputypes.BackendDX12,
	rhi.APIVulkan: gputypes.BackendVulkan,
	rhi.APIMetal:  gputypes.BackendMetal,
	rhi.APIGL:     gputypes.BackendGL,
}

// driverOrder returns the drivers to try for api.
func driverOrder(api string) []string {
	switch api {
	case "", rhi.APIAuto:
		return autoOrder
	case rhi.APINoop:
		return []string{rhi.APINoop}
	}
	if _, ok := driverBackends[api]; ok {
		return []string{api}
	}
	return nil
}

// lookupDriver resolves api to a hal backend linked into the binary.
func lookupDriver(api string) (instanceCreator, bool) {
	if api == rhi.APINoop {
		return &noop.API{}, true
	}
	b, ok := driverBackends[api]
	if !ok {
		return nil, false
	}
	backend, ok := hal.GetBackend(b)
	if !ok {
		return nil, false
	}
	return backend, true
}
