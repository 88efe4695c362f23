package ports

import (
	"context"
	"image"
)

// VideoInfo describes a video container before any frame is decoded.
type VideoInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
	Codec           string
}

// VideoProber reads container metadata without decoding frames.
type VideoProber interface {
	// Probe returns the duration and dimensions of the first video track.
	Probe(ctx context.Context, path string) (VideoInfo, error)
}

// FrameGrabber opens random-access decode handles over video files.
type FrameGrabber interface {
	// Open prepares a handle for seeking through the video at path.
	// The caller owns the handle and must Close it.
	Open(ctx context.Context, path string) (DecodeHandle, error)
}

// DecodeHandle is a temporary decoder bound to one video.
type DecodeHandle interface {
	// Info returns the metadata established when the handle was opened.
	Info() VideoInfo

	// Seek decodes the frame shown at the given position.
	// It returns the frame and the position actually reached, which may
	// differ from the request when the decoder snaps to a keyframe.
	Seek(ctx context.Context, seconds float64) (image.Image, float64, error)

	// Close releases the decoder. Seek must not be called afterwards.
	Close() error
}
