package rhi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		code Status
		want string
	}{
		{StatusOK, "0x00000000"},
		{StatusTimeout, "0x00000102"},
		{StatusFail, "0x80004005"},
		{StatusInvalidArg, "0x80070057"},
		{StatusDeviceLost, "0x887A0005"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestNativeErrorFormat(t *testing.T) {
	err := &NativeError{Op: "create buffer", Code: StatusOutOfMemory, Err: errors.New("heap full")}
	want := "rhi: create buffer: HRESULT of 0x8007000E: heap full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &NativeError{Op: "signal fence", Code: StatusFail}
	if !strings.HasSuffix(bare.Error(), "HRESULT of 0x80004005") {
		t.Errorf("Error() = %q, want HRESULT suffix", bare.Error())
	}
}

func TestNativeNil(t *testing.T) {
	if err := Native("op", nil); err != nil {
		t.Errorf("Native(nil) = %v, want nil", err)
	}
}

func TestNativeUnwrap(t *testing.T) {
	cause := errors.New("driver said no")
	err := Native("create image", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var ne *NativeError
	if !errors.As(err, &ne) {
		t.Fatal("errors.As(*NativeError) = false")
	}
	if ne.Code != StatusFail {
		t.Errorf("Code = %s, want %s", ne.Code, StatusFail)
	}
}

func TestNativeNoDoubleWrap(t *testing.T) {
	inner := NativeStatus("wait", StatusDeviceLost, nil)
	outer := Native("submit", fmt.Errorf("queue: %w", inner))

	var ne *NativeError
	if !errors.As(outer, &ne) {
		t.Fatal("errors.As(*NativeError) = false")
	}
	if ne.Op != "wait" || ne.Code != StatusDeviceLost {
		t.Errorf("got op=%q code=%s, want inner error preserved", ne.Op, ne.Code)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusOK},
		{"deadline", context.DeadlineExceeded, StatusTimeout},
		{"canceled", fmt.Errorf("wait: %w", context.Canceled), StatusAborted},
		{"nil descriptor", ErrNilDescriptor, StatusInvalidArg},
		{"invalid size", fmt.Errorf("buffer: %w", ErrInvalidSize), StatusInvalidArg},
		{"binding mismatch", ErrBindingMismatch, StatusInvalidArg},
		{"native", NativeStatus("x", StatusOutOfMemory, nil), StatusOutOfMemory},
		{"other", errors.New("boom"), StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(nil); got != StatusOK {
		t.Errorf("StatusOf(nil) = %s, want %s", got, StatusOK)
	}
	err := fmt.Errorf("frame: %w", NativeStatus("present", StatusDeviceLost, nil))
	if got := StatusOf(err); got != StatusDeviceLost {
		t.Errorf("StatusOf() = %s, want %s", got, StatusDeviceLost)
	}
}
