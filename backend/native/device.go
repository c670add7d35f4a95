// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/wgpu/hal"
)

// Device is a logical device (ID3D12Device) and its queue.
type Device struct {
	resource

	api    string
	cfg    rhi.Config
	device hal.Device
	limits gputypes.Limits
	info   gputypes.AdapterInfo
	sub    *submitter
	queues [3]*Queue

	// engine is set when the device owns its instance. Adopted devices
	// leave it nil and are not destroyed by Destroy.
	engine *Engine
	owned  bool

	logger  atomic.Pointer[slog.Logger]
	stopLog func()
}

var _ rhi.Device = (*Device)(nil)

// Wrap adopts a hal device and queue created elsewhere. The Device does not
// track the resources created through it. Destroy waits for the queue and
// leaves the adopted device open.
func Wrap(device hal.Device, queue hal.Queue, opts ...rhi.Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg := rhi.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDevice("external", cfg, device, queue, gputypes.DefaultLimits(), gputypes.AdapterInfo{}, nil, false), nil
}

// FromProvider adopts the device exposed by p. p must implement HalDevice()
// and HalQueue() returning a hal.Device and hal.Queue.
func FromProvider(p any, opts ...rhi.Option) (*Device, error) {
	hp, ok := p.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, ErrNoProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoProvider, hp.HalQueue())
	}
	return Wrap(device, queue, opts...)
}

func newDevice(api string, cfg rhi.Config, device hal.Device, queue hal.Queue, limits gputypes.Limits,
	info gputypes.AdapterInfo, engine *Engine, owned bool) *Device {
	d := &Device{
		resource: resource{label: cfg.Label},
		api:      api,
		cfg:      cfg,
		device:   device,
		limits:   limits,
		info:     info,
		sub:      &submitter{queue: queue},
		engine:   engine,
		owned:    owned,
	}
	for i := range d.queues {
		d.queues[i] = &Queue{dev: d, typ: rhi.QueueType(i)}
	}
	d.stopLog = rhi.WatchLogger(d)
	d.log().Info("native: device ready", "label", cfg.Label, "adapter", info.Name, "owned", owned)
	return d
}

// SetLogger receives the package logger from rhi.WatchLogger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.logger.Store(l.With("api", d.api))
}

func (d *Device) log() *slog.Logger {
	if l := d.logger.Load(); l != nil {
		return l
	}
	return rhi.Logger()
}

// Backend returns the name of the hal driver ("dx12", "vulkan", ...).
func (d *Device) Backend() string { return d.api }

// Limits returns the limits the device was opened with.
func (d *Device) Limits() rhi.Limits { return convertLimits(d.limits) }

// Queue returns the queue for t. All types share one native queue.
func (d *Device) Queue(t rhi.QueueType) rhi.Queue {
	if int(t) >= len(d.queues) {
		t = rhi.QueueGraphics
	}
	return d.queues[t]
}

// Config returns the configuration the device was opened with.
func (d *Device) Config() rhi.Config { return d.cfg }

// HalDevice returns the native device handle.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the native queue handle.
func (d *Device) HalQueue() hal.Queue { return d.sub.queue }

// WaitIdle blocks until all submitted work has finished.
func (d *Device) WaitIdle(ctx context.Context) error {
	return d.queues[rhi.QueueGraphics].WaitIdle(ctx)
}

// Destroy waits for the queue to drain and releases the device. Resources
// created from d must be destroyed by the caller first. Adopted devices are
// left open.
func (d *Device) Destroy() {
	if d.destroyed.Load() {
		return
	}
	if err := d.WaitIdle(context.Background()); err != nil {
		d.log().Warn("native: wait idle on destroy", "err", err)
	}
	if !d.release() {
		return
	}
	if d.stopLog != nil {
		d.stopLog()
	}
	if d.owned {
		d.device.Destroy()
	}
	if d.engine != nil {
		d.engine.Close()
	}
	d.log().Info("native: device destroyed", "label", d.label)
}
