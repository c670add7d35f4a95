// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// PipelineCache caches pipeline state objects by descriptor hash.
//
// Pipelines returned by the cache belong to it: their Destroy is a no-op
// and DestroyAll releases them. PipelineCache is safe for concurrent use.
type PipelineCache struct {
	dev *Device

	mu       sync.RWMutex
	graphics map[uint64]*Pipeline
	compute  map[uint64]*Pipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewPipelineCache returns an empty cache for d.
func (d *Device) NewPipelineCache() *PipelineCache {
	return &PipelineCache{
		dev:      d,
		graphics: make(map[uint64]*Pipeline),
		compute:  make(map[uint64]*Pipeline),
	}
}

// GraphicsPipeline returns the cached pipeline for desc, creating it on a miss.
func (c *PipelineCache) GraphicsPipeline(desc *rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("cached graphics pipeline: %w", rhi.ErrNilDescriptor)
	}
	key, err := hashGraphicsDesc(desc)
	if err != nil {
		return nil, err
	}
	return c.getOrCreate(c.graphics, key, func() (rhi.Pipeline, error) {
		return c.dev.CreateGraphicsPipeline(desc)
	})
}

// ComputePipeline returns the cached pipeline for desc, creating it on a miss.
func (c *PipelineCache) ComputePipeline(desc *rhi.ComputePipelineDesc) (rhi.Pipeline, error) {
	if desc == nil {
		return nil, fmt.Errorf("cached compute pipeline: %w", rhi.ErrNilDescriptor)
	}
	key, err := hashComputeDesc(desc)
	if err != nil {
		return nil, err
	}
	return c.getOrCreate(c.compute, key, func() (rhi.Pipeline, error) {
		return c.dev.CreateComputePipeline(desc)
	})
}

func (c *PipelineCache) getOrCreate(m map[uint64]*Pipeline, key uint64, create func() (rhi.Pipeline, error)) (rhi.Pipeline, error) {
	c.mu.RLock()
	if p, ok := m[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := m[key]; ok {
		c.hits.Add(1)
		return p, nil
	}
	created, err := create()
	if err != nil {
		return nil, err
	}
	p := created.(*Pipeline)
	p.cached = true
	m[key] = p
	c.misses.Add(1)
	return p, nil
}

// Stats returns cache hits and misses.
func (c *PipelineCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached pipelines.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.graphics) + len(c.compute)
}

// DestroyAll releases every cached pipeline and resets the statistics.
func (c *PipelineCache) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.graphics {
		p.destroy()
	}
	for _, p := range c.compute {
		p.destroy()
	}
	clear(c.graphics)
	clear(c.compute)
	c.hits.Store(0)
	c.misses.Store(0)
}

func hashComputeDesc(desc *rhi.ComputePipelineDesc) (uint64, error) {
	layout, err := unwrap[*PipelineLayout]("cached compute pipeline", desc.Layout)
	if err != nil {
		return 0, err
	}
	module, err := unwrap[*ShaderModule]("cached compute pipeline", desc.Shader)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	hashWriteUint64(h, layout.id)
	hashWriteUint64(h, module.codeHash)
	hashWriteString(h, entryPoint(desc.EntryPoint))
	return h.Sum64(), nil
}

func hashGraphicsDesc(desc *rhi.GraphicsPipelineDesc) (uint64, error) {
	layout, err := unwrap[*PipelineLayout]("cached graphics pipeline", desc.Layout)
	if err != nil {
		return 0, err
	}
	vs, err := unwrap[*ShaderModule]("cached graphics pipeline", desc.VertexShader)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	hashWriteUint64(h, layout.id)
	hashWriteUint64(h, vs.codeHash)
	hashWriteString(h, entryPoint(desc.VertexEntry))
	if desc.FragmentShader != nil {
		fs, err := unwrap[*ShaderModule]("cached graphics pipeline", desc.FragmentShader)
		if err != nil {
			return 0, err
		}
		hashWriteUint64(h, fs.codeHash)
		hashWriteString(h, entryPoint(desc.FragmentEntry))
	} else {
		hashWriteUint64(h, 0)
	}

	hashWriteUint32(h, uint32(len(desc.VertexBuffers)))
	for _, vb := range desc.VertexBuffers {
		hashWriteUint64(h, vb.Stride)
		hashWriteBool(h, vb.PerInstance)
		hashWriteUint32(h, uint32(len(vb.Attributes)))
		for _, a := range vb.Attributes {
			hashWriteUint32(h, a.Location)
			hashWriteUint64(h, a.Offset)
			hashWriteUint32(h, uint32(a.Format))
		}
	}
	hashWriteUint32(h, uint32(len(desc.ColorTargets)))
	for _, t := range desc.ColorTargets {
		hashWriteUint32(h, uint32(t.Format))
		hashWriteBool(h, t.Blend)
	}
	if ds := desc.DepthStencil; ds != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(ds.Format))
		hashWriteBool(h, ds.DepthWrite)
		hashWriteUint32(h, uint32(ds.DepthCompare))
	} else {
		hashWriteBool(h, false)
	}
	hashWriteUint32(h, uint32(desc.Topology))
	hashWriteUint32(h, uint32(desc.CullMode))
	hashWriteUint32(h, max(desc.Samples, 1))
	return h.Sum64(), nil
}

// hashSource hashes the shader source a module was created from.
func hashSource(desc *rhi.ShaderDesc) uint64 {
	h := fnv.New64a()
	if desc.WGSL != "" {
		hashWriteString(h, desc.WGSL)
		return h.Sum64()
	}
	for _, w := range desc.SPIRV {
		hashWriteUint32(h, w)
	}
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func hashWriteBool(h hash.Hash64, b bool) {
	if b {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
