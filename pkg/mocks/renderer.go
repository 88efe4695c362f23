package mocks

import (
	"image"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	NewSurfaceFunc  func(width, height int) ports.Surface
	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	Surfaces []*Surface
}

func (m *Renderer) NewSurface(width, height int) ports.Surface {
	if m.NewSurfaceFunc != nil {
		return m.NewSurfaceFunc(width, height)
	}
	s := &Surface{Width: width, Height: height}
	m.mu.Lock()
	m.Surfaces = append(m.Surfaces, s)
	m.mu.Unlock()
	return s
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// SurfaceCount returns how many surfaces were allocated.
func (m *Renderer) SurfaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Surfaces)
}

var _ ports.Renderer = (*Renderer)(nil)

// Surface is a mock implementation of ports.Surface that counts releases.
type Surface struct {
	Width  int
	Height int

	mu       sync.Mutex
	draws    int
	releases int
}

func (s *Surface) Draw(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
}

func (s *Surface) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
}

func (s *Surface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
}

// Draws returns the number of Draw calls.
func (s *Surface) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// Releases returns the number of Release calls.
func (s *Surface) Releases() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

var _ ports.Surface = (*Surface)(nil)
