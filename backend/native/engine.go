// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// AdapterInfo describes one adapter exposed by the instance.
type AdapterInfo struct {
	Index int
	Name  string
	Type  string
}

// Engine owns a hal instance for one driver and the adapters it exposes.
type Engine struct {
	cfg      rhi.Config
	api      string
	instance hal.Instance
	adapters []hal.ExposedAdapter

	closeOnce sync.Once
}

// NewEngine creates an instance for cfg.API. With rhi.APIAuto the drivers
// compiled into the binary are tried in preference order.
func NewEngine(cfg rhi.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apis := driverOrder(cfg.API)
	if len(apis) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownAPI, cfg.API)
	}

	var lastErr error
	for _, api := range apis {
		creator, ok := lookupDriver(api)
		if !ok {
			lastErr = fmt.Errorf("%w %q", ErrUnknownAPI, api)
			continue
		}
		instance, err := creator.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			lastErr = rhi.Native("create instance", err)
			rhi.Logger().Debug("native: driver unavailable", "api", api, "err", err)
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			instance.Destroy()
			lastErr = fmt.Errorf("%s: %w", api, rhi.ErrNoAdapter)
			continue
		}
		rhi.Logger().Debug("native: instance created", "api", api, "adapters", len(adapters))
		return &Engine{cfg: cfg, api: api, instance: instance, adapters: adapters}, nil
	}
	return nil, lastErr
}

// API returns the driver the instance was created for.
func (e *Engine) API() string { return e.api }

// Adapters lists the adapters the instance exposes.
func (e *Engine) Adapters() []AdapterInfo {
	out := make([]AdapterInfo, len(e.adapters))
	for i := range e.adapters {
		info := e.adapters[i].Info
		out[i] = AdapterInfo{
			Index: i,
			Name:  info.Name,
			Type:  deviceTypeName(info.DeviceType),
		}
	}
	return out
}

// SelectAdapter returns the index of the adapter OpenDevice will use: the
// configured index, else the preferred GPU type, else the other GPU type,
// else the first adapter.
func (e *Engine) SelectAdapter() (int, error) {
	if e.cfg.AdapterIndex >= 0 {
		if e.cfg.AdapterIndex >= len(e.adapters) {
			return 0, fmt.Errorf("adapter %d of %d: %w", e.cfg.AdapterIndex, len(e.adapters), rhi.ErrNoAdapter)
		}
		return e.cfg.AdapterIndex, nil
	}
	preferred, fallback := gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU
	if e.cfg.PreferLowPower {
		preferred, fallback = fallback, preferred
	}
	for _, want := range []gputypes.DeviceType{preferred, fallback} {
		for i := range e.adapters {
			if e.adapters[i].Info.DeviceType == want {
				return i, nil
			}
		}
	}
	rhi.Logger().Warn("native: no discrete or integrated GPU, using first adapter",
		"name", e.adapters[0].Info.Name)
	return 0, nil
}

// OpenDevice opens the selected adapter. The returned device owns the
// engine and closes it on Destroy.
func (e *Engine) OpenDevice() (*Device, error) {
	idx, err := e.SelectAdapter()
	if err != nil {
		return nil, err
	}
	limits := gputypes.DefaultLimits()
	opened, err := e.adapters[idx].Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		return nil, rhi.Native("open device", err)
	}
	rhi.Logger().Info("native: adapter selected",
		"api", e.api, "index", idx, "name", e.adapters[idx].Info.Name,
		"type", deviceTypeName(e.adapters[idx].Info.DeviceType))

	return newDevice(e.api, e.cfg, opened.Device, opened.Queue, limits, e.adapters[idx].Info, e, true), nil
}

// Close destroys the instance. It is safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		if e.instance != nil {
			e.instance.Destroy()
		}
	})
}

func deviceTypeName(t gputypes.DeviceType) string {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return "discrete"
	case gputypes.DeviceTypeIntegratedGPU:
		return "integrated"
	default:
		return "other"
	}
}
