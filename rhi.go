package rhi

import (
	"context"
	"image"
)

// Resource is implemented by every adapter that owns a native handle.
//
// Destroy releases the native object. Calling Destroy twice is safe; using a
// resource after Destroy returns ErrDestroyed or is a no-op.
type Resource interface {
	Label() string
	Destroy()
}

// Device is a logical GPU device. It creates every other resource.
//
// Implementations must be safe for concurrent use. Resources created by a
// device must be destroyed before the device itself.
type Device interface {
	Resource

	// Backend returns the name of the native API driving this device
	// (e.g. "dx12", "vulkan", "noop").
	Backend() string

	// Limits returns the limits the device was opened with.
	Limits() Limits

	// Queue returns the queue of the given type. Backends with a single
	// native queue return the same queue for every type.
	Queue(t QueueType) Queue

	CreateBuffer(desc *BufferDesc) (Buffer, error)
	CreateImage(desc *ImageDesc) (Image, error)
	CreateSampler(desc *SamplerDesc) (Sampler, error)
	CreateShaderModule(desc *ShaderDesc) (ShaderModule, error)
	CreateDescriptorSetLayout(desc *DescriptorSetLayoutDesc) (DescriptorSetLayout, error)
	CreateDescriptorPool(desc *DescriptorPoolDesc) (DescriptorPool, error)
	CreatePipelineLayout(desc *PipelineLayoutDesc) (PipelineLayout, error)
	CreateComputePipeline(desc *ComputePipelineDesc) (Pipeline, error)
	CreateGraphicsPipeline(desc *GraphicsPipelineDesc) (Pipeline, error)
	CreateCommandPool(desc *CommandPoolDesc) (CommandPool, error)

	// CreateFence creates a timeline fence whose completed value starts at initial.
	CreateFence(initial uint64) (Fence, error)

	// WaitIdle blocks until all submitted work has finished.
	WaitIdle(ctx context.Context) error
}

// Queue submits recorded command buffers and performs queue-side uploads.
type Queue interface {
	Type() QueueType

	// Submit executes the command buffers in order. If signal is non-nil the
	// fence reaches value once the batch completes.
	Submit(cmds []CommandBuffer, signal Fence, value uint64) error

	// WriteBuffer copies data into buf at offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// WriteImage copies tightly packed texel rows into mip level mip of img.
	WriteImage(img Image, mip uint32, data []byte) error

	// ReadBuffer copies the contents of a CPU-readable buffer into dst.
	ReadBuffer(buf Buffer, offset uint64, dst []byte) error

	// WaitIdle blocks until all work submitted to this queue has finished.
	WaitIdle(ctx context.Context) error
}

// CommandPool allocates command buffers for one queue type. Reset frees every
// command buffer the pool allocated.
type CommandPool interface {
	Resource
	Queue() QueueType
	Allocate() (CommandBuffer, error)
	Reset() error
}

// CommandBufferState is the lifecycle state of a command buffer.
type CommandBufferState uint8

// Command buffer states.
const (
	CommandBufferInitial CommandBufferState = iota
	CommandBufferRecording
	CommandBufferExecutable
	CommandBufferSubmitted
	CommandBufferFreed
)

// String returns the state name.
func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferInitial:
		return "initial"
	case CommandBufferRecording:
		return "recording"
	case CommandBufferExecutable:
		return "executable"
	case CommandBufferSubmitted:
		return "submitted"
	case CommandBufferFreed:
		return "freed"
	default:
		return "unknown"
	}
}

// CommandBuffer records GPU commands. It is not safe for concurrent use.
//
// State machine:
//
//	Initial    -> Begin()   -> Recording
//	Recording  -> End()     -> Executable
//	Executable -> Submit    -> Submitted
//	Recording  -> Discard() -> Initial
type CommandBuffer interface {
	Resource

	State() CommandBufferState

	Begin() error
	End() error
	Discard()

	CopyBuffer(src, dst Buffer, regions ...BufferCopy) error
	CopyBufferToImage(src Buffer, dst Image, regions ...BufferImageCopy) error
	CopyImageToBuffer(src Image, dst Buffer, regions ...BufferImageCopy) error
	Barrier(barriers ...ImageBarrier) error

	// BeginComputePass locks the command buffer until the pass ends.
	BeginComputePass(label string) (ComputePass, error)

	// BeginRenderPass locks the command buffer until the pass ends.
	BeginRenderPass(desc *RenderPassDesc) (RenderPass, error)
}

// ComputePass records dispatches.
type ComputePass interface {
	SetPipeline(p Pipeline) error
	SetDescriptorSet(index uint32, set DescriptorSet) error
	Dispatch(x, y, z uint32)
	End() error
}

// RenderPass records draws.
type RenderPass interface {
	SetPipeline(p Pipeline) error
	SetDescriptorSet(index uint32, set DescriptorSet) error
	SetVertexBuffer(slot uint32, buf Buffer, offset uint64) error
	SetIndexBuffer(buf Buffer, format IndexFormat, offset uint64) error
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissor(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
}

// DescriptorSetLayout describes the slots of a descriptor set.
type DescriptorSetLayout interface {
	Resource
	Bindings() []LayoutBinding
}

// DescriptorPool allocates descriptor sets from a fixed budget.
type DescriptorPool interface {
	Resource
	Allocate(layout DescriptorSetLayout) (DescriptorSet, error)
	Free(set DescriptorSet) error
	Reset()

	// Allocated returns the number of live sets.
	Allocated() int
}

// DescriptorSet is a group of resource bindings matching a layout.
type DescriptorSet interface {
	Resource
	Layout() DescriptorSetLayout
	Update(writes ...DescriptorWrite) error
}

// Buffer is a linear GPU allocation.
type Buffer interface {
	Resource
	Size() uint64
	Usage() BufferUsage
	Memory() MemoryType

	// Write uploads data at offset through the device's queue.
	Write(offset uint64, data []byte) error

	// Read copies len(dst) bytes starting at offset back to the CPU. It
	// stalls until the copy completes.
	Read(ctx context.Context, offset uint64, dst []byte) error
}

// Image is a texel allocation.
type Image interface {
	Resource
	Desc() ImageDesc
	CreateView(desc *ImageViewDesc) (ImageView, error)

	// Upload writes img into mip level 0, converting to the image format.
	Upload(img image.Image) error
}

// ImageView is a typed view of an image.
type ImageView interface {
	Resource
	Image() Image
}

// Sampler is a texture sampler.
type Sampler interface {
	Resource
}

// ShaderModule is a compiled shader.
type ShaderModule interface {
	Resource
}

// PipelineLayout is a pipeline layout (root signature).
type PipelineLayout interface {
	Resource
}

// PipelineKind distinguishes compute from graphics pipelines.
type PipelineKind uint8

// Pipeline kinds.
const (
	PipelineCompute PipelineKind = iota
	PipelineGraphics
)

// Pipeline is a compiled pipeline state object.
type Pipeline interface {
	Resource
	Kind() PipelineKind
}

// Fence is a timeline fence.
type Fence interface {
	Resource

	// Value returns the highest value the GPU has completed.
	Value() uint64

	// Signal enqueues a signal of value on the queue. Values must increase.
	Signal(value uint64) error

	// Wait blocks until the fence reaches value, ctx is done, or the
	// backend's fence timeout expires.
	Wait(ctx context.Context, value uint64) error
}
