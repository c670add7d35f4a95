// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"context"

	"github.com/gogpu/rhi"
)

// BackendName is the registry name of this backend.
const BackendName = "native"

func init() {
	rhi.Register(BackendName, 100, func() rhi.Backend { return backend{} })
}

type backend struct{}

func (backend) Name() string { return BackendName }

// Open creates an instance for cfg.API and opens the selected adapter.
func (backend) Open(ctx context.Context, cfg rhi.Config) (rhi.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	d, err := e.OpenDevice()
	if err != nil {
		e.Close()
		return nil, err
	}
	return d, nil
}
