package rhi

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageMapRead indicates the buffer can be read back by the CPU.
	BufferUsageMapRead BufferUsage = 1 << 0

	// BufferUsageMapWrite indicates the buffer can be written by the CPU.
	BufferUsageMapWrite BufferUsage = 1 << 1

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageIndex indicates the buffer can be used as an index buffer.
	BufferUsageIndex BufferUsage = 1 << 4

	// BufferUsageVertex indicates the buffer can be used as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << 5

	// BufferUsageUniform indicates the buffer can be used as a uniform (constant) buffer.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be used as a storage (UAV) buffer.
	BufferUsageStorage BufferUsage = 1 << 7

	// BufferUsageIndirect indicates the buffer can hold indirect draw/dispatch arguments.
	BufferUsageIndirect BufferUsage = 1 << 8
)

// MemoryType selects the heap a buffer lives in. It mirrors the D3D12 heap
// types and is translated into extra usage bits by the backend.
type MemoryType uint8

// Memory types.
const (
	// MemoryDefault is GPU-local memory (D3D12_HEAP_TYPE_DEFAULT).
	MemoryDefault MemoryType = iota

	// MemoryUpload is CPU-writable staging memory (D3D12_HEAP_TYPE_UPLOAD).
	MemoryUpload

	// MemoryReadback is CPU-readable memory (D3D12_HEAP_TYPE_READBACK).
	MemoryReadback
)

// String returns the heap name.
func (m MemoryType) String() string {
	switch m {
	case MemoryDefault:
		return "default"
	case MemoryUpload:
		return "upload"
	case MemoryReadback:
		return "readback"
	default:
		return "unknown"
	}
}

// ImageUsage is a bitmask specifying how an image will be used.
type ImageUsage uint32

// Image usage flags.
const (
	// ImageUsageCopySrc indicates the image can be used as a copy source.
	ImageUsageCopySrc ImageUsage = 1 << 0

	// ImageUsageCopyDst indicates the image can be used as a copy destination.
	ImageUsageCopyDst ImageUsage = 1 << 1

	// ImageUsageSampled indicates the image can be bound as a sampled texture (SRV).
	ImageUsageSampled ImageUsage = 1 << 2

	// ImageUsageStorage indicates the image can be bound as a storage texture (UAV).
	ImageUsageStorage ImageUsage = 1 << 3

	// ImageUsageRenderTarget indicates the image can be used as a color or depth attachment.
	ImageUsageRenderTarget ImageUsage = 1 << 4
)

// Format specifies the texel format of an image.
type Format uint32

// Image formats.
const (
	FormatUndefined Format = iota
	FormatRGBA8Unorm
	FormatRGBA8UnormSRGB
	FormatBGRA8Unorm
	FormatBGRA8UnormSRGB
	FormatR8Unorm
	FormatR32Float
	FormatRG32Float
	FormatRGBA16Float
	FormatRGBA32Float
	FormatDepth32Float
	FormatDepth24PlusStencil8
)

// String returns a short format name for logs.
func (f Format) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRGBA8UnormSRGB:
		return "rgba8unorm-srgb"
	case FormatBGRA8Unorm:
		return "bgra8unorm"
	case FormatBGRA8UnormSRGB:
		return "bgra8unorm-srgb"
	case FormatR8Unorm:
		return "r8unorm"
	case FormatR32Float:
		return "r32float"
	case FormatRG32Float:
		return "rg32float"
	case FormatRGBA16Float:
		return "rgba16float"
	case FormatRGBA32Float:
		return "rgba32float"
	case FormatDepth32Float:
		return "depth32float"
	case FormatDepth24PlusStencil8:
		return "depth24plus-stencil8"
	default:
		return "undefined"
	}
}

// IsDepth reports whether the format has a depth aspect.
func (f Format) IsDepth() bool {
	return f == FormatDepth32Float || f == FormatDepth24PlusStencil8
}

// BytesPerTexel returns the size in bytes of one texel, or 0 for formats
// without a CPU-addressable layout.
func (f Format) BytesPerTexel() uint32 {
	switch f {
	case FormatR8Unorm:
		return 1
	case FormatRGBA8Unorm, FormatRGBA8UnormSRGB, FormatBGRA8Unorm, FormatBGRA8UnormSRGB,
		FormatR32Float, FormatDepth32Float, FormatDepth24PlusStencil8:
		return 4
	case FormatRG32Float, FormatRGBA16Float:
		return 8
	case FormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// ImageDimension is the dimensionality of an image.
type ImageDimension uint8

// Image dimensions.
const (
	ImageDimension2D ImageDimension = iota
	ImageDimension1D
	ImageDimension3D
)

// ViewDimension is the dimensionality of an image view.
type ViewDimension uint8

// View dimensions. ViewDimensionDefault derives the view from the image.
const (
	ViewDimensionDefault ViewDimension = iota
	ViewDimension1D
	ViewDimension2D
	ViewDimension2DArray
	ViewDimensionCube
	ViewDimension3D
)

// FilterMode is a sampler filter.
type FilterMode uint8

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// AddressMode is a sampler addressing mode.
type AddressMode uint8

// Address modes.
const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
	AddressMirrorRepeat
)

// CompareFunction is a depth or sampler comparison.
type CompareFunction uint8

// Compare functions. CompareNone disables comparison.
const (
	CompareNone CompareFunction = iota
	CompareNever
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// DescriptorType is the kind of resource bound at a descriptor slot.
type DescriptorType uint8

// Descriptor types.
const (
	DescriptorUniformBuffer DescriptorType = iota + 1
	DescriptorStorageBuffer
	DescriptorReadOnlyStorageBuffer
	DescriptorSampler
	DescriptorSampledImage
	DescriptorStorageImage
)

// String returns the descriptor type name.
func (t DescriptorType) String() string {
	switch t {
	case DescriptorUniformBuffer:
		return "uniform-buffer"
	case DescriptorStorageBuffer:
		return "storage-buffer"
	case DescriptorReadOnlyStorageBuffer:
		return "read-only-storage-buffer"
	case DescriptorSampler:
		return "sampler"
	case DescriptorSampledImage:
		return "sampled-image"
	case DescriptorStorageImage:
		return "storage-image"
	default:
		return "invalid"
	}
}

// IsBuffer reports whether the descriptor binds a buffer range.
func (t DescriptorType) IsBuffer() bool {
	return t == DescriptorUniformBuffer || t == DescriptorStorageBuffer || t == DescriptorReadOnlyStorageBuffer
}

// ShaderStage is a bitmask of pipeline stages.
type ShaderStage uint8

// Shader stages.
const (
	StageVertex   ShaderStage = 1 << 0
	StageFragment ShaderStage = 1 << 1
	StageCompute  ShaderStage = 1 << 2
)

// QueueType selects a native command queue.
type QueueType uint8

// Queue types.
const (
	QueueGraphics QueueType = iota
	QueueCompute
	QueueTransfer
)

// String returns the queue type name.
func (q QueueType) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	case QueueTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// PrimitiveTopology is the primitive assembly mode.
type PrimitiveTopology uint8

// Primitive topologies.
const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// CullMode selects which faces are culled.
type CullMode uint8

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// LoadOp is an attachment load operation.
type LoadOp uint8

// Load operations.
const (
	LoadClear LoadOp = iota
	LoadLoad
)

// StoreOp is an attachment store operation.
type StoreOp uint8

// Store operations.
const (
	StoreStore StoreOp = iota
	StoreDiscard
)

// IndexFormat is the element type of an index buffer.
type IndexFormat uint8

// Index formats.
const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// VertexFormat is the type of a vertex attribute.
type VertexFormat uint8

// Vertex formats.
const (
	VertexFloat32 VertexFormat = iota
	VertexFloat32x2
	VertexFloat32x3
	VertexFloat32x4
	VertexUint32
)

// Size returns the byte size of an attribute of this format.
func (v VertexFormat) Size() uint64 {
	switch v {
	case VertexFloat32, VertexUint32:
		return 4
	case VertexFloat32x2:
		return 8
	case VertexFloat32x3:
		return 12
	case VertexFloat32x4:
		return 16
	default:
		return 0
	}
}

// ResourceState is the usage an image is transitioned into by a barrier.
type ResourceState uint8

// Resource states.
const (
	StateUndefined ResourceState = iota
	StateCopySrc
	StateCopyDst
	StateShaderRead
	StateStorage
	StateRenderTarget
	StatePresent
)

// Extent3D is a width/height/depth triple. Depth doubles as the array layer
// count for 2D images.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

// Origin3D is a texel offset inside an image.
type Origin3D struct {
	X, Y, Z uint32
}

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// Limits reports the capability limits of an opened device.
type Limits struct {
	MaxBufferSize                    uint64
	MaxImageDimension2D              uint32
	MaxBindGroups                    uint32
	MaxComputeWorkgroupSizeX         uint32
	MaxComputeWorkgroupSizeY         uint32
	MaxComputeWorkgroupSizeZ         uint32
	MaxComputeWorkgroupsPerDimension uint32
}
