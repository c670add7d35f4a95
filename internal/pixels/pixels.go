// Package pixels packs image data into the row layouts GPU copies expect.
package pixels

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/rhi"
)

// RowPitchAlignment is the D3D12 texture copy row pitch alignment.
const RowPitchAlignment = 256

// ErrUnsupportedFormat is returned when an image cannot be packed into a format.
var ErrUnsupportedFormat = errors.New("pixels: unsupported format")

// BytesPerPixel returns the texel size of f, or 0 when f has no CPU layout.
func BytesPerPixel(f rhi.Format) uint32 {
	return f.BytesPerTexel()
}

// AlignedRowPitch rounds bytesPerRow up to RowPitchAlignment.
func AlignedRowPitch(bytesPerRow uint32) uint32 {
	return (bytesPerRow + RowPitchAlignment - 1) &^ (RowPitchAlignment - 1)
}

// ToRGBA8 converts img to tightly packed premultiplied RGBA8 rows.
func ToRGBA8(img image.Image) []byte {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && rgba.Rect.Min == (image.Point{}) {
		return append([]byte(nil), rgba.Pix...)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst.Pix
}

// ToBGRA8 converts img to tightly packed premultiplied BGRA8 rows.
func ToBGRA8(img image.Image) []byte {
	pix := ToRGBA8(img)
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
	return pix
}

// ToR8 converts img to tightly packed 8-bit luminance rows.
func ToR8(img image.Image) []byte {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst.Pix
}

// Pack converts img into tightly packed rows of format f.
func Pack(img image.Image, f rhi.Format) ([]byte, error) {
	switch f {
	case rhi.FormatRGBA8Unorm, rhi.FormatRGBA8UnormSRGB:
		return ToRGBA8(img), nil
	case rhi.FormatBGRA8Unorm, rhi.FormatBGRA8UnormSRGB:
		return ToBGRA8(img), nil
	case rhi.FormatR8Unorm:
		return ToR8(img), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Downsample scales img to width x height with Catmull-Rom filtering.
func Downsample(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// PadRows copies rows of rowBytes from tightly packed data into a buffer
// whose rows start every pitch bytes.
func PadRows(data []byte, rowBytes, rows, pitch uint32) []byte {
	if pitch == rowBytes {
		return data
	}
	out := make([]byte, int(pitch)*int(rows))
	for y := range int(rows) {
		src := data[y*int(rowBytes) : (y+1)*int(rowBytes)]
		copy(out[y*int(pitch):], src)
	}
	return out
}

// StripRows removes row padding, returning tightly packed rows of rowBytes.
func StripRows(data []byte, rowBytes, rows, pitch uint32) []byte {
	if pitch == rowBytes {
		return data
	}
	out := make([]byte, int(rowBytes)*int(rows))
	for y := range int(rows) {
		start := y * int(pitch)
		copy(out[y*int(rowBytes):(y+1)*int(rowBytes)], data[start:start+int(rowBytes)])
	}
	return out
}
