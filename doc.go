// Package rhi provides a thin Render Hardware Interface for Go.
//
// # Overview
//
// rhi exposes command buffers, queues, descriptor pools, buffers, images,
// samplers, fences and pipelines behind API-agnostic interfaces. The
// backend is a 1:1 translation layer: every call fills in one native
// descriptor, issues the matching native call and wraps the returned
// handle. There is no render graph, no residency tracking and no implicit
// barrier management.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/rhi"
//	    _ "github.com/gogpu/rhi/backend/native"
//	)
//
//	dev, err := rhi.Open(ctx, rhi.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer dev.Destroy()
//
//	buf, err := dev.CreateBuffer(&rhi.BufferDesc{Size: 1024, Usage: rhi.BufferUsageStorage})
//
// # Errors
//
// Native failures are returned as *NativeError carrying a numeric Status
// formatted like an HRESULT ("0x80004005"). Failures are never retried.
// Caller contract violations are returned as the Err* sentinels.
//
// # Backends
//
// Backends register themselves with Register from an init function.
// backend/native drives github.com/gogpu/wgpu/hal and prefers its D3D12
// driver. Import it for side effects, or use its Engine directly.
//
// # Logging
//
// rhi is silent by default. Call SetLogger to route diagnostics into a
// *slog.Logger.
package rhi

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
