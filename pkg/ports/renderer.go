package ports

import (
	"image"
)

// Renderer abstracts raster operations on captured frames.
type Renderer interface {
	// NewSurface allocates a rasterization surface of the given size.
	// The caller must Release it.
	NewSurface(width, height int) Surface

	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Surface is a reusable drawing target that frames are rasterized onto
// before encoding.
type Surface interface {
	// Draw paints img over the whole surface, scaling it to fit.
	Draw(img image.Image)

	// Image returns the current surface contents.
	Image() image.Image

	// Release frees the backing memory. Further calls are no-ops.
	Release()
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

// MimeType returns the media type of encoded images in this format.
func (f ImageFormat) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	default:
		return "image/jpeg"
	}
}
