package rhi

import (
	"context"
	"errors"
	"fmt"
)

// Caller contract errors.
var (
	// ErrNilDescriptor is returned when a Create call receives a nil descriptor.
	ErrNilDescriptor = errors.New("rhi: nil descriptor")

	// ErrInvalidSize is returned for zero or out-of-range sizes and extents.
	ErrInvalidSize = errors.New("rhi: invalid size")

	// ErrDestroyed is returned when a destroyed resource is used.
	ErrDestroyed = errors.New("rhi: resource destroyed")

	// ErrForeignResource is returned when a resource from another backend is passed in.
	ErrForeignResource = errors.New("rhi: resource belongs to another backend")

	// ErrNotRecording is returned when a command is recorded outside Begin/End.
	ErrNotRecording = errors.New("rhi: command buffer not recording")

	// ErrNotExecutable is returned when a command buffer that was not ended is submitted.
	ErrNotExecutable = errors.New("rhi: command buffer not executable")

	// ErrPassActive is returned when the command buffer is locked by an open pass.
	ErrPassActive = errors.New("rhi: pass in progress")

	// ErrPassEnded is returned when a pass is used after End.
	ErrPassEnded = errors.New("rhi: pass already ended")

	// ErrPoolExhausted is returned when a descriptor pool has no room left.
	ErrPoolExhausted = errors.New("rhi: descriptor pool exhausted")

	// ErrDescriptorSetIncomplete is returned when a set is bound before Update.
	ErrDescriptorSetIncomplete = errors.New("rhi: descriptor set has no bindings written")

	// ErrBindingMismatch is returned when a write does not match the layout binding.
	ErrBindingMismatch = errors.New("rhi: descriptor write does not match layout")

	// ErrFenceValue is returned when a fence signal value does not increase.
	ErrFenceValue = errors.New("rhi: fence value must increase")

	// ErrBackendNotAvailable is returned when the requested backend is not registered.
	ErrBackendNotAvailable = errors.New("rhi: backend not available")

	// ErrNoAdapter is returned when the native API exposes no usable adapter.
	ErrNoAdapter = errors.New("rhi: no GPU adapter found")
)

// Status is a numeric native status code. Values follow HRESULT conventions
// so that failures read the same as the D3D12 driver reports them.
type Status uint32

// Native status codes.
const (
	StatusOK          Status = 0x00000000
	StatusTimeout     Status = 0x00000102 // WAIT_TIMEOUT
	StatusAborted     Status = 0x80004004 // E_ABORT
	StatusFail        Status = 0x80004005 // E_FAIL
	StatusOutOfMemory Status = 0x8007000E // E_OUTOFMEMORY
	StatusInvalidArg  Status = 0x80070057 // E_INVALIDARG
	StatusDeviceLost  Status = 0x887A0005 // DXGI_ERROR_DEVICE_REMOVED
)

// String formats the status as a hex string, e.g. "0x80004005".
func (s Status) String() string {
	return fmt.Sprintf("0x%08X", uint32(s))
}

// NativeError is returned whenever a native API call fails. The failure is
// never retried or recovered locally.
type NativeError struct {
	// Op is the RHI operation that failed, e.g. "create buffer".
	Op string

	// Code is the status the failure was classified as.
	Code Status

	// Err is the error reported by the native API.
	Err error
}

func (e *NativeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rhi: %s: HRESULT of %s", e.Op, e.Code)
	}
	return fmt.Sprintf("rhi: %s: HRESULT of %s: %v", e.Op, e.Code, e.Err)
}

func (e *NativeError) Unwrap() error { return e.Err }

// Native wraps a native failure of op. It returns nil when err is nil.
func Native(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne *NativeError
	if errors.As(err, &ne) {
		return err
	}
	return &NativeError{Op: op, Code: Classify(err), Err: err}
}

// NativeStatus builds a NativeError with an explicit code.
func NativeStatus(op string, code Status, err error) error {
	return &NativeError{Op: op, Code: code, Err: err}
}

// Classify maps an error onto a Status.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, context.Canceled):
		return StatusAborted
	case errors.Is(err, ErrNilDescriptor), errors.Is(err, ErrInvalidSize), errors.Is(err, ErrBindingMismatch):
		return StatusInvalidArg
	default:
		var ne *NativeError
		if errors.As(err, &ne) {
			return ne.Code
		}
		return StatusFail
	}
}

// StatusOf returns the Status carried by err, or StatusOK for nil.
func StatusOf(err error) Status {
	var ne *NativeError
	if errors.As(err, &ne) {
		return ne.Code
	}
	return Classify(err)
}
