// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import "errors"

// Backend errors.
var (
	// ErrNilDevice is returned by Wrap when the hal device or queue is nil.
	ErrNilDevice = errors.New("native: device is nil")

	// ErrUnknownAPI is returned when no hal driver matches the configured API.
	ErrUnknownAPI = errors.New("native: no hal driver for api")

	// ErrNoProvider is returned by FromProvider when the provider does not
	// expose hal handles.
	ErrNoProvider = errors.New("native: provider does not expose hal device and queue")

	// ErrPoolDestroyed is returned when allocating from a destroyed command pool.
	ErrPoolDestroyed = errors.New("native: command pool destroyed")

	// ErrPipelineKind is returned when a compute pipeline is bound in a
	// render pass or the other way round.
	ErrPipelineKind = errors.New("native: pipeline kind does not match pass")

	// ErrShaderSource is returned when a shader descriptor sets neither or
	// both of WGSL and SPIR-V.
	ErrShaderSource = errors.New("native: shader needs exactly one of WGSL or SPIR-V")
)
