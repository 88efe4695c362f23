// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/ainspire/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// NewSurface allocates a black surface of the given size.
func (r *Renderer) NewSurface(width, height int) ports.Surface {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()
	return &Surface{dc: dc}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode: nil image")
	}
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

var _ ports.Renderer = (*Renderer)(nil)

// Surface implements ports.Surface using gg.Context.
type Surface struct {
	dc *gg.Context
}

// Draw clears the surface and paints img scaled to cover it.
func (s *Surface) Draw(img image.Image) {
	if s.dc == nil || img == nil {
		return
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return
	}

	s.dc.SetColor(color.Black)
	s.dc.Clear()

	w, h := s.dc.Width(), s.dc.Height()
	if bounds.Dx() == w && bounds.Dy() == h {
		s.dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
		return
	}

	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Scale(float64(w)/float64(bounds.Dx()), float64(h)/float64(bounds.Dy()))
	s.dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
}

// Image returns the surface contents, or nil after Release.
func (s *Surface) Image() image.Image {
	if s.dc == nil {
		return nil
	}
	return s.dc.Image()
}

// Release drops the backing context.
func (s *Surface) Release() {
	s.dc = nil
}

var _ ports.Surface = (*Surface)(nil)
