package rhi

// BufferDesc describes a buffer.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes. Must be positive.
	Size uint64

	// Usage is a bitmask of BufferUsage flags.
	Usage BufferUsage

	// Memory selects the heap. Upload and readback heaps add the
	// corresponding map and copy usages.
	Memory MemoryType
}

// ImageDesc describes an image.
type ImageDesc struct {
	Label string

	// Size is the image extent. Depth is the array layer count for 2D images
	// and is treated as 1 when zero.
	Size Extent3D

	// MipLevels is the mip chain length. Zero means 1.
	MipLevels uint32

	// Samples is the MSAA sample count. Zero means 1.
	Samples uint32

	Dimension ImageDimension
	Format    Format
	Usage     ImageUsage
}

// ImageViewDesc describes a view of an image. The zero value views the
// whole image with its own format.
type ImageViewDesc struct {
	Label         string
	Format        Format
	Dimension     ViewDimension
	BaseMipLevel  uint32
	MipLevelCount uint32
	BaseLayer     uint32
	LayerCount    uint32
}

// SamplerDesc describes a sampler.
type SamplerDesc struct {
	Label         string
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	MagFilter     FilterMode
	MinFilter     FilterMode
	MipFilter     FilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	Compare       CompareFunction
	MaxAnisotropy uint16
}

// ShaderDesc describes a shader module. Exactly one of WGSL or SPIRV must be set.
type ShaderDesc struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

// LayoutBinding describes one slot of a descriptor set layout.
type LayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Stages  ShaderStage

	// MinBindingSize is the minimum buffer range for buffer descriptors.
	MinBindingSize uint64

	// Format is required for storage images.
	Format Format
}

// DescriptorSetLayoutDesc describes a descriptor set layout.
type DescriptorSetLayoutDesc struct {
	Label    string
	Bindings []LayoutBinding
}

// PoolSize is the descriptor budget of one type in a descriptor pool.
type PoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorPoolDesc describes a descriptor pool.
type DescriptorPoolDesc struct {
	Label string

	// MaxSets is the number of descriptor sets the pool can hold at once.
	MaxSets uint32

	// Sizes bounds the total descriptors of each type across all live sets.
	// A type with no entry is unbounded.
	Sizes []PoolSize
}

// DescriptorWrite binds one resource to a descriptor set slot. Set the field
// that matches the layout's binding type.
type DescriptorWrite struct {
	Binding uint32

	Buffer Buffer
	Offset uint64
	// Size is the bound range. Zero binds the rest of the buffer.
	Size uint64

	View    ImageView
	Sampler Sampler
}

// PipelineLayoutDesc describes a pipeline layout (root signature).
type PipelineLayoutDesc struct {
	Label      string
	SetLayouts []DescriptorSetLayout
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	Label      string
	Layout     PipelineLayout
	Shader     ShaderModule
	EntryPoint string
}

// VertexAttribute describes one attribute inside a vertex buffer.
type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

// VertexBufferLayout describes the layout of one vertex buffer slot.
type VertexBufferLayout struct {
	Stride      uint64
	PerInstance bool
	Attributes  []VertexAttribute
}

// ColorTarget describes a color attachment format of a graphics pipeline.
type ColorTarget struct {
	Format Format

	// Blend enables premultiplied alpha blending.
	Blend bool
}

// DepthStencilTarget describes the depth attachment of a graphics pipeline.
type DepthStencilTarget struct {
	Format       Format
	DepthWrite   bool
	DepthCompare CompareFunction
}

// GraphicsPipelineDesc describes a graphics pipeline.
type GraphicsPipelineDesc struct {
	Label  string
	Layout PipelineLayout

	VertexShader   ShaderModule
	VertexEntry    string
	FragmentShader ShaderModule
	FragmentEntry  string

	VertexBuffers []VertexBufferLayout
	ColorTargets  []ColorTarget
	DepthStencil  *DepthStencilTarget

	Topology PrimitiveTopology
	CullMode CullMode

	// Samples is the MSAA sample count. Zero means 1.
	Samples uint32
}

// CommandPoolDesc describes a command pool.
type CommandPoolDesc struct {
	Label string
	Queue QueueType
}

// ColorAttachment is a render pass color target.
type ColorAttachment struct {
	View       ImageView
	Resolve    ImageView
	Load       LoadOp
	Store      StoreOp
	ClearColor Color
}

// DepthAttachment is a render pass depth/stencil target.
type DepthAttachment struct {
	View       ImageView
	Load       LoadOp
	Store      StoreOp
	ClearDepth float32
}

// RenderPassDesc describes a render pass.
type RenderPassDesc struct {
	Label  string
	Colors []ColorAttachment
	Depth  *DepthAttachment
}

// BufferCopy is one buffer-to-buffer copy region.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// BufferImageCopy is one buffer/image copy region. BytesPerRow must be a
// multiple of 256 for D3D12 compatibility.
type BufferImageCopy struct {
	BufferOffset uint64
	BytesPerRow  uint32
	RowsPerImage uint32
	MipLevel     uint32
	Origin       Origin3D
	Extent       Extent3D
}

// ImageBarrier transitions an image between resource states.
type ImageBarrier struct {
	Image  Image
	Before ResourceState
	After  ResourceState
}
