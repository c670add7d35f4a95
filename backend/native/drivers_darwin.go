// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import _ "github.com/gogpu/wgpu/hal/metal"
