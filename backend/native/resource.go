// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

// resource is embedded by every adapter. It carries the debug label and the
// destroyed flag.
type resource struct {
	label     string
	destroyed atomic.Bool
}

// Label returns the debug label the resource was created with.
func (r *resource) Label() string { return r.label }

// release marks the resource destroyed. It reports false if it already was.
func (r *resource) release() bool {
	return r.destroyed.CompareAndSwap(false, true)
}

func (r *resource) alive() error {
	if r.destroyed.Load() {
		return rhi.ErrDestroyed
	}
	return nil
}

type liveResource interface {
	alive() error
}

// unwrap returns the native adapter behind an rhi interface value. Values
// created by another backend yield ErrForeignResource.
func unwrap[T liveResource](what string, v any) (T, error) {
	r, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %w", what, rhi.ErrForeignResource)
	}
	if err := r.alive(); err != nil {
		return r, fmt.Errorf("%s: %w", what, err)
	}
	return r, nil
}
