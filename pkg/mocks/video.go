package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// FrameGrabber is a mock implementation of ports.FrameGrabber.
// Without OpenFunc it hands out DecodeHandles built from Info.
type FrameGrabber struct {
	OpenFunc func(ctx context.Context, path string) (ports.DecodeHandle, error)

	// Info is used for handles created by the default Open.
	Info ports.VideoInfo
	// SeekFunc is installed on handles created by the default Open.
	SeekFunc func(ctx context.Context, seconds float64) (image.Image, float64, error)

	mu      sync.Mutex
	Opened  []string
	Handles []*DecodeHandle
}

func (m *FrameGrabber) Open(ctx context.Context, path string) (ports.DecodeHandle, error) {
	m.mu.Lock()
	m.Opened = append(m.Opened, path)
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path)
	}
	h := &DecodeHandle{InfoValue: m.Info, SeekFunc: m.SeekFunc}
	m.mu.Lock()
	m.Handles = append(m.Handles, h)
	m.mu.Unlock()
	return h, nil
}

// OpenedPaths returns the paths passed to Open, in order.
func (m *FrameGrabber) OpenedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Opened...)
}

var _ ports.FrameGrabber = (*FrameGrabber)(nil)

// DecodeHandle is a mock implementation of ports.DecodeHandle.
// By default Seek returns a small image at exactly the requested position.
type DecodeHandle struct {
	InfoValue ports.VideoInfo
	SeekFunc  func(ctx context.Context, seconds float64) (image.Image, float64, error)
	CloseErr  error

	mu     sync.Mutex
	seeks  []float64
	closes int
}

func (h *DecodeHandle) Info() ports.VideoInfo {
	return h.InfoValue
}

func (h *DecodeHandle) Seek(ctx context.Context, seconds float64) (image.Image, float64, error) {
	h.mu.Lock()
	h.seeks = append(h.seeks, seconds)
	h.mu.Unlock()

	if h.SeekFunc != nil {
		return h.SeekFunc(ctx, seconds)
	}
	return image.NewRGBA(image.Rect(0, 0, 16, 9)), seconds, nil
}

func (h *DecodeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes++
	return h.CloseErr
}

// Seeks returns the requested seek positions, in order.
func (h *DecodeHandle) Seeks() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64(nil), h.seeks...)
}

// Closes returns the number of Close calls.
func (h *DecodeHandle) Closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closes
}

var _ ports.DecodeHandle = (*DecodeHandle)(nil)

// VideoProber is a mock implementation of ports.VideoProber.
type VideoProber struct {
	ProbeFunc func(ctx context.Context, path string) (ports.VideoInfo, error)
}

func (m *VideoProber) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return ports.VideoInfo{DurationSeconds: 10, Width: 640, Height: 360, Codec: "h264"}, nil
}

var _ ports.VideoProber = (*VideoProber)(nil)
