package rhi

import "testing"

func TestFormatBytesPerTexel(t *testing.T) {
	tests := []struct {
		format Format
		want   uint32
	}{
		{FormatUndefined, 0},
		{FormatR8Unorm, 1},
		{FormatRGBA8Unorm, 4},
		{FormatBGRA8UnormSRGB, 4},
		{FormatRG32Float, 8},
		{FormatRGBA16Float, 8},
		{FormatRGBA32Float, 16},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.BytesPerTexel(); got != tt.want {
				t.Errorf("BytesPerTexel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatIsDepth(t *testing.T) {
	if !FormatDepth32Float.IsDepth() || !FormatDepth24PlusStencil8.IsDepth() {
		t.Error("depth formats should report IsDepth")
	}
	if FormatRGBA8Unorm.IsDepth() {
		t.Error("rgba8unorm should not report IsDepth")
	}
}

func TestDescriptorTypeIsBuffer(t *testing.T) {
	buffers := []DescriptorType{DescriptorUniformBuffer, DescriptorStorageBuffer, DescriptorReadOnlyStorageBuffer}
	for _, dt := range buffers {
		if !dt.IsBuffer() {
			t.Errorf("%s.IsBuffer() = false", dt)
		}
	}
	for _, dt := range []DescriptorType{DescriptorSampler, DescriptorSampledImage, DescriptorStorageImage} {
		if dt.IsBuffer() {
			t.Errorf("%s.IsBuffer() = true", dt)
		}
	}
	if DescriptorType(0).String() != "invalid" {
		t.Errorf("zero DescriptorType = %q, want invalid", DescriptorType(0).String())
	}
}

func TestVertexFormatSize(t *testing.T) {
	if VertexFloat32x3.Size() != 12 {
		t.Errorf("VertexFloat32x3.Size() = %d, want 12", VertexFloat32x3.Size())
	}
	if VertexUint32.Size() != 4 {
		t.Errorf("VertexUint32.Size() = %d, want 4", VertexUint32.Size())
	}
}

func TestStateStrings(t *testing.T) {
	if MemoryReadback.String() != "readback" {
		t.Errorf("MemoryReadback = %q", MemoryReadback.String())
	}
	if QueueTransfer.String() != "transfer" {
		t.Errorf("QueueTransfer = %q", QueueTransfer.String())
	}
	if CommandBufferExecutable.String() != "executable" {
		t.Errorf("CommandBufferExecutable = %q", CommandBufferExecutable.String())
	}
}
