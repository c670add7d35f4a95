// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/pixels"
	"github.com/gogpu/wgpu/hal"
)

// Image is a committed texture resource (ID3D12Resource).
type Image struct {
	resource
	dev     *Device
	texture hal.Texture
	desc    rhi.ImageDesc
}

var _ rhi.Image = (*Image)(nil)

// CreateImage creates an image. Zero Depth, MipLevels and Samples mean 1.
// Single-sampled color images are always copy destinations so Upload works.
func (d *Device) CreateImage(desc *rhi.ImageDesc) (rhi.Image, error) {
	if desc == nil {
		return nil, fmt.Errorf("create image: %w", rhi.ErrNilDescriptor)
	}
	if err := d.alive(); err != nil {
		return nil, err
	}
	nd, err := normalizeImageDesc(*desc, d.limits.MaxTextureDimension2D)
	if err != nil {
		return nil, fmt.Errorf("create image %q: %w", desc.Label, err)
	}

	usage := convertImageUsage(nd.Usage)
	if nd.Samples == 1 && !nd.Format.IsDepth() {
		usage |= gputypes.TextureUsageCopyDst
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         nd.Label,
		Size:          hal.Extent3D{Width: nd.Size.Width, Height: nd.Size.Height, DepthOrArrayLayers: nd.Size.Depth},
		MipLevelCount: nd.MipLevels,
		SampleCount:   nd.Samples,
		Dimension:     convertImageDimension(nd.Dimension),
		Format:        convertFormat(nd.Format),
		Usage:         usage,
	})
	if err != nil {
		return nil, rhi.Native("create image", err)
	}
	d.log().Debug("native: image created", "label", nd.Label,
		"width", nd.Size.Width, "height", nd.Size.Height, "format", nd.Format.String(), "mips", nd.MipLevels)
	return &Image{resource: resource{label: nd.Label}, dev: d, texture: tex, desc: nd}, nil
}

// normalizeImageDesc fills defaults and validates the extent.
func normalizeImageDesc(desc rhi.ImageDesc, maxDim uint32) (rhi.ImageDesc, error) {
	if desc.Format == rhi.FormatUndefined {
		return desc, fmt.Errorf("undefined format: %w", rhi.ErrInvalidSize)
	}
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return desc, fmt.Errorf("extent %dx%d: %w", desc.Size.Width, desc.Size.Height, rhi.ErrInvalidSize)
	}
	if maxDim > 0 && (desc.Size.Width > maxDim || desc.Size.Height > maxDim) {
		return desc, fmt.Errorf("extent %dx%d exceeds %d: %w", desc.Size.Width, desc.Size.Height, maxDim, rhi.ErrInvalidSize)
	}
	if desc.Size.Depth == 0 {
		desc.Size.Depth = 1
	}
	if desc.Samples == 0 {
		desc.Samples = 1
	}
	full := maxMipLevels(desc.Size)
	if desc.MipLevels == 0 {
		desc.MipLevels = 1
	}
	if desc.MipLevels > full {
		return desc, fmt.Errorf("%d mip levels, at most %d: %w", desc.MipLevels, full, rhi.ErrInvalidSize)
	}
	if desc.Samples > 1 && desc.MipLevels > 1 {
		return desc, fmt.Errorf("multisampled image with mips: %w", rhi.ErrInvalidSize)
	}
	return desc, nil
}

// maxMipLevels returns the length of a full mip chain for size.
func maxMipLevels(size rhi.Extent3D) uint32 {
	largest := max(size.Width, size.Height)
	return uint32(bits.Len32(largest))
}

// mipExtent returns width, height and depth-or-layers of mip level mip.
func (im *Image) mipExtent(mip uint32) (w, h, layers uint32) {
	w = max(im.desc.Size.Width>>mip, 1)
	h = max(im.desc.Size.Height>>mip, 1)
	layers = im.desc.Size.Depth
	if im.desc.Dimension == rhi.ImageDimension3D {
		layers = max(layers>>mip, 1)
	}
	return w, h, layers
}

// Desc returns the descriptor with defaults applied.
func (im *Image) Desc() rhi.ImageDesc { return im.desc }

// Upload converts img to the image format and writes it to mip 0. Lower
// mips, if any, are filled with downsampled copies. Only single-layer
// 2D images with 8-bit color formats can be uploaded.
func (im *Image) Upload(img image.Image) error {
	if err := im.alive(); err != nil {
		return err
	}
	b := img.Bounds()
	if uint32(b.Dx()) != im.desc.Size.Width || uint32(b.Dy()) != im.desc.Size.Height {
		return fmt.Errorf("upload %q: source %dx%d, image %dx%d: %w",
			im.label, b.Dx(), b.Dy(), im.desc.Size.Width, im.desc.Size.Height, rhi.ErrInvalidSize)
	}
	if im.desc.Dimension != rhi.ImageDimension2D || im.desc.Size.Depth != 1 {
		return fmt.Errorf("upload %q: not a single-layer 2D image: %w", im.label, rhi.ErrInvalidSize)
	}
	q := im.dev.queues[rhi.QueueTransfer]
	data, err := pixels.Pack(img, im.desc.Format)
	if err != nil {
		return fmt.Errorf("upload %q: %w", im.label, err)
	}
	if err := q.WriteImage(im, 0, data); err != nil {
		return err
	}
	for mip := uint32(1); mip < im.desc.MipLevels; mip++ {
		w, h, _ := im.mipExtent(mip)
		data, err := pixels.Pack(pixels.Downsample(img, int(w), int(h)), im.desc.Format)
		if err != nil {
			return fmt.Errorf("upload %q mip %d: %w", im.label, mip, err)
		}
		if err := q.WriteImage(im, mip, data); err != nil {
			return err
		}
	}
	return nil
}

// CreateView creates a view. A nil desc views the whole image.
func (im *Image) CreateView(desc *rhi.ImageViewDesc) (rhi.ImageView, error) {
	if err := im.alive(); err != nil {
		return nil, err
	}
	var vd rhi.ImageViewDesc
	if desc != nil {
		vd = *desc
	}
	if vd.Format == rhi.FormatUndefined {
		vd.Format = im.desc.Format
	}
	if vd.BaseMipLevel >= im.desc.MipLevels {
		return nil, fmt.Errorf("create view of %q: base mip %d of %d: %w", im.label, vd.BaseMipLevel, im.desc.MipLevels, rhi.ErrInvalidSize)
	}
	if vd.MipLevelCount == 0 {
		vd.MipLevelCount = im.desc.MipLevels - vd.BaseMipLevel
	}
	layers := im.desc.Size.Depth
	if im.desc.Dimension == rhi.ImageDimension3D {
		layers = 1
	}
	if vd.BaseLayer >= layers {
		return nil, fmt.Errorf("create view of %q: base layer %d of %d: %w", im.label, vd.BaseLayer, layers, rhi.ErrInvalidSize)
	}
	if vd.LayerCount == 0 {
		vd.LayerCount = layers - vd.BaseLayer
	}
	if vd.BaseMipLevel+vd.MipLevelCount > im.desc.MipLevels || vd.BaseLayer+vd.LayerCount > layers {
		return nil, fmt.Errorf("create view of %q: subresource range: %w", im.label, rhi.ErrInvalidSize)
	}
	if vd.Dimension == rhi.ViewDimensionCube && vd.LayerCount != 6 {
		return nil, fmt.Errorf("create view of %q: cube view needs 6 layers, got %d: %w", im.label, vd.LayerCount, rhi.ErrInvalidSize)
	}

	label := vd.Label
	if label == "" {
		label = im.label + " view"
	}
	view, err := im.dev.device.CreateTextureView(im.texture, &hal.TextureViewDescriptor{
		Label:           label,
		Format:          convertFormat(vd.Format),
		Dimension:       convertViewDimension(vd.Dimension, im.desc),
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    vd.BaseMipLevel,
		MipLevelCount:   vd.MipLevelCount,
		BaseArrayLayer:  vd.BaseLayer,
		ArrayLayerCount: vd.LayerCount,
	})
	if err != nil {
		return nil, rhi.Native("create image view", err)
	}
	return &ImageView{
		resource: resource{label: label},
		img:      im,
		view:     view,
		format:   vd.Format,
		baseMip:  vd.BaseMipLevel,
	}, nil
}

// Destroy releases the native texture. Views must be destroyed first.
func (im *Image) Destroy() {
	if !im.release() {
		return
	}
	im.dev.device.DestroyTexture(im.texture)
}

// ImageView is a shader or attachment view of an image (SRV/UAV/RTV/DSV).
type ImageView struct {
	resource
	img     *Image
	view    hal.TextureView
	format  rhi.Format
	baseMip uint32
}

var _ rhi.ImageView = (*ImageView)(nil)

// Image returns the viewed image.
func (v *ImageView) Image() rhi.Image { return v.img }

// extent returns the size of the view's base mip.
func (v *ImageView) extent() (w, h uint32) {
	w, h, _ = v.img.mipExtent(v.baseMip)
	return w, h
}

// Destroy releases the native view.
func (v *ImageView) Destroy() {
	if !v.release() {
		return
	}
	v.img.dev.device.DestroyTextureView(v.view)
}
