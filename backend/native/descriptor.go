// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/slots"
	"github.com/gogpu/wgpu/hal"
)

// DescriptorSetLayout describes the slots of a descriptor table.
type DescriptorSetLayout struct {
	resource
	dev      *Device
	layout   hal.BindGroupLayout
	bindings []rhi.LayoutBinding
	counts   map[rhi.DescriptorType]uint32
}

var _ rhi.DescriptorSetLayout = (*DescriptorSetLayout)(nil)

// CreateDescriptorSetLayout creates a layout. Binding numbers must be unique.
func (d *Device) CreateDescriptorSetLayout(desc *rhi.DescriptorSetLayoutDesc) (rhi.DescriptorSetLayout, error) {
	if desc == nil {
		return nil, fmt.Errorf("create descriptor set layout: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}

	bindings := append([]rhi.LayoutBinding(nil), desc.Bindings...)
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Binding < bindings[j].Binding })
	counts := make(map[rhi.DescriptorType]uint32)
	entries := make([]gputypes.BindGroupLayoutEntry, len(bindings))
	for i, b := range bindings {
		if i > 0 && bindings[i-1].Binding == b.Binding {
			return nil, fmt.Errorf("create descriptor set layout %q: binding %d declared twice: %w", desc.Label, b.Binding, rhi.ErrBindingMismatch)
		}
		if b.Type.String() == "invalid" {
			return nil, fmt.Errorf("create descriptor set layout %q: binding %d has no type: %w", desc.Label, b.Binding, rhi.ErrBindingMismatch)
		}
		if b.Type == rhi.DescriptorStorageImage && b.Format == rhi.FormatUndefined {
			return nil, fmt.Errorf("create descriptor set layout %q: storage image %d needs a format: %w", desc.Label, b.Binding, rhi.ErrBindingMismatch)
		}
		counts[b.Type]++
		entries[i] = convertLayoutBinding(b)
	}

	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, rhi.Native("create descriptor set layout", err)
	}
	return &DescriptorSetLayout{
		resource: resource{label: desc.Label},
		dev:      d,
		layout:   layout,
		bindings: bindings,
		counts:   counts,
	}, nil
}

// Bindings returns a copy of the layout's bindings sorted by binding number.
func (l *DescriptorSetLayout) Bindings() []rhi.LayoutBinding {
	return append([]rhi.LayoutBinding(nil), l.bindings...)
}

func (l *DescriptorSetLayout) binding(n uint32) (rhi.LayoutBinding, bool) {
	i := sort.Search(len(l.bindings), func(i int) bool { return l.bindings[i].Binding >= n })
	if i < len(l.bindings) && l.bindings[i].Binding == n {
		return l.bindings[i], true
	}
	return rhi.LayoutBinding{}, false
}

// Destroy releases the native layout.
func (l *DescriptorSetLayout) Destroy() {
	if !l.release() {
		return
	}
	l.dev.device.DestroyBindGroupLayout(l.layout)
}

// DescriptorPool is a shader-visible descriptor heap with room for MaxSets
// tables. Sizes bounds the descriptors of each type across live sets. A type
// missing from Sizes has no capacity.
type DescriptorPool struct {
	resource
	dev *Device

	mu     sync.Mutex
	slots  *slots.Allocator
	budget map[rhi.DescriptorType]uint32
	used   map[rhi.DescriptorType]uint32
	sets   map[int]*DescriptorSet
}

var _ rhi.DescriptorPool = (*DescriptorPool)(nil)

// CreateDescriptorPool creates a pool. MaxSets must be positive.
func (d *Device) CreateDescriptorPool(desc *rhi.DescriptorPoolDesc) (rhi.DescriptorPool, error) {
	if desc == nil {
		return nil, fmt.Errorf("create descriptor pool: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	if desc.MaxSets == 0 {
		return nil, fmt.Errorf("create descriptor pool %q: zero max sets: %w", desc.Label, rhi.ErrInvalidSize)
	}
	budget := make(map[rhi.DescriptorType]uint32, len(desc.Sizes))
	for _, s := range desc.Sizes {
		budget[s.Type] += s.Count
	}
	d.log().Debug("native: descriptor pool created", "label", desc.Label, "sets", desc.MaxSets, "types", len(budget))
	return &DescriptorPool{
		resource: resource{label: desc.Label},
		dev:      d,
		slots:    slots.New(int(desc.MaxSets)),
		budget:   budget,
		used:     make(map[rhi.DescriptorType]uint32),
		sets:     make(map[int]*DescriptorSet),
	}, nil
}

// Allocate reserves a set for layout. It fails with ErrPoolExhausted when
// the pool has no free set or a descriptor type budget would be exceeded.
func (p *DescriptorPool) Allocate(layout rhi.DescriptorSetLayout) (rhi.DescriptorSet, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	l, err := unwrap[*DescriptorSetLayout]("allocate descriptor set", layout)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for t, n := range l.counts {
		if limit := p.budget[t]; p.used[t]+n > limit {
			return nil, fmt.Errorf("allocate from %q: %d %s descriptors of %d in use: %w",
				p.label, p.used[t], t, limit, rhi.ErrPoolExhausted)
		}
	}
	slot, ok := p.slots.Acquire()
	if !ok {
		return nil, fmt.Errorf("allocate from %q: %d sets in use: %w", p.label, p.slots.Cap(), rhi.ErrPoolExhausted)
	}
	for t, n := range l.counts {
		p.used[t] += n
	}
	set := &DescriptorSet{
		resource: resource{label: fmt.Sprintf("%s[%d]", p.label, slot)},
		pool:     p,
		layout:   l,
		slot:     slot,
		writes:   make(map[uint32]rhi.DescriptorWrite),
	}
	p.sets[slot] = set
	return set, nil
}

// Free returns set to the pool.
func (p *DescriptorPool) Free(set rhi.DescriptorSet) error {
	ds, err := unwrap[*DescriptorSet]("free descriptor set", set)
	if err != nil {
		return err
	}
	if ds.pool != p {
		return fmt.Errorf("free descriptor set %q from pool %q: %w", ds.label, p.label, rhi.ErrForeignResource)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freeLocked(ds)
	return nil
}

// freeLocked must be called with p.mu held.
func (p *DescriptorPool) freeLocked(ds *DescriptorSet) {
	if !ds.release() {
		return
	}
	ds.mu.Lock()
	if ds.group != nil {
		p.dev.device.DestroyBindGroup(ds.group)
		ds.group = nil
	}
	ds.mu.Unlock()
	for t, n := range ds.layout.counts {
		p.used[t] -= n
	}
	p.slots.Release(ds.slot)
	delete(p.sets, ds.slot)
}

// Reset frees every set allocated from the pool.
func (p *DescriptorPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ds := range p.sets {
		p.freeLocked(ds)
	}
	p.slots.Reset()
	clear(p.used)
}

// Allocated returns the number of live sets.
func (p *DescriptorPool) Allocated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots.InUse()
}

// Destroy frees every remaining set and releases the pool.
func (p *DescriptorPool) Destroy() {
	if p.destroyed.Load() {
		return
	}
	if n := p.Allocated(); n > 0 {
		p.dev.log().Warn("native: descriptor pool destroyed with live sets", "label", p.label, "sets", n)
	}
	p.Reset()
	p.release()
}

// DescriptorSet is a descriptor table inside a pool. The native bind group
// is rebuilt by Update once every binding of the layout has been written.
type DescriptorSet struct {
	resource
	pool   *DescriptorPool
	layout *DescriptorSetLayout
	slot   int

	mu     sync.Mutex
	writes map[uint32]rhi.DescriptorWrite
	group  hal.BindGroup
}

var _ rhi.DescriptorSet = (*DescriptorSet)(nil)

// Layout returns the layout the set was allocated with.
func (s *DescriptorSet) Layout() rhi.DescriptorSetLayout { return s.layout }

// Update writes bindings. Each write must match the type of its layout
// binding. Writes are applied together or not at all.
func (s *DescriptorSet) Update(writes ...rhi.DescriptorWrite) error {
	if err := s.alive(); err != nil {
		return err
	}
	for _, w := range writes {
		if err := s.check(w); err != nil {
			return fmt.Errorf("update %q: %w", s.label, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[uint32]rhi.DescriptorWrite, len(s.layout.bindings))
	for n, w := range s.writes {
		merged[n] = w
	}
	for _, w := range writes {
		merged[w.Binding] = w
	}
	if len(merged) < len(s.layout.bindings) {
		s.writes = merged
		return nil
	}

	entries := make([]gputypes.BindGroupEntry, 0, len(s.layout.bindings))
	for _, b := range s.layout.bindings {
		entries = append(entries, bindGroupEntry(b, merged[b.Binding]))
	}
	dev := s.pool.dev
	group, err := dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   s.label,
		Layout:  s.layout.layout,
		Entries: entries,
	})
	if err != nil {
		return rhi.Native("create descriptor table", err)
	}
	if s.group != nil {
		dev.device.DestroyBindGroup(s.group)
	}
	s.writes = merged
	s.group = group
	return nil
}

// check validates w against the layout binding it targets.
func (s *DescriptorSet) check(w rhi.DescriptorWrite) error {
	b, ok := s.layout.binding(w.Binding)
	if !ok {
		return fmt.Errorf("binding %d not in layout: %w", w.Binding, rhi.ErrBindingMismatch)
	}
	switch {
	case b.Type.IsBuffer():
		if w.Buffer == nil || w.View != nil || w.Sampler != nil {
			return fmt.Errorf("binding %d is a %s: %w", w.Binding, b.Type, rhi.ErrBindingMismatch)
		}
		buf, err := unwrap[*Buffer]("binding", w.Buffer)
		if err != nil {
			return err
		}
		size := w.Size
		if size == 0 && w.Offset < buf.size {
			size = buf.size - w.Offset
		}
		if err := checkRange(w.Offset, size, buf.size); err != nil || size == 0 {
			return fmt.Errorf("binding %d: range [%d, +%d) of %d: %w", w.Binding, w.Offset, size, buf.size, rhi.ErrInvalidSize)
		}
		if size < b.MinBindingSize {
			return fmt.Errorf("binding %d: %d bytes below minimum %d: %w", w.Binding, size, b.MinBindingSize, rhi.ErrInvalidSize)
		}
	case b.Type == rhi.DescriptorSampler:
		if w.Sampler == nil || w.Buffer != nil || w.View != nil {
			return fmt.Errorf("binding %d is a %s: %w", w.Binding, b.Type, rhi.ErrBindingMismatch)
		}
		if _, err := unwrap[*Sampler]("binding", w.Sampler); err != nil {
			return err
		}
	default:
		if w.View == nil || w.Buffer != nil || w.Sampler != nil {
			return fmt.Errorf("binding %d is a %s: %w", w.Binding, b.Type, rhi.ErrBindingMismatch)
		}
		if _, err := unwrap[*ImageView]("binding", w.View); err != nil {
			return err
		}
	}
	return nil
}

// bindGroupEntry converts a checked write into a native entry.
func bindGroupEntry(b rhi.LayoutBinding, w rhi.DescriptorWrite) gputypes.BindGroupEntry {
	entry := gputypes.BindGroupEntry{Binding: b.Binding}
	switch {
	case b.Type.IsBuffer():
		buf := w.Buffer.(*Buffer)
		size := w.Size
		if size == 0 {
			size = buf.size - w.Offset
		}
		entry.Resource = gputypes.BufferBinding{Buffer: buf.buffer.NativeHandle(), Offset: w.Offset, Size: size}
	case b.Type == rhi.DescriptorSampler:
		entry.Resource = gputypes.SamplerBinding{Sampler: w.Sampler.(*Sampler).sampler.NativeHandle()}
	default:
		entry.Resource = gputypes.TextureViewBinding{TextureView: w.View.(*ImageView).view.NativeHandle()}
	}
	return entry
}

// Destroy returns the set to its pool.
func (s *DescriptorSet) Destroy() {
	p := s.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freeLocked(s)
}
