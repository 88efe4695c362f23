// Package sample implements frame extraction: point-sampling a video at a
// fixed interval and encoding each capture as a still image.
package sample

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

// ErrInvalidInterval is returned when the sampling interval is not a
// positive, finite number of seconds.
var ErrInvalidInterval = errors.New("sample: interval must be a positive number of seconds")

// Options controls how captures are rasterized and encoded.
type Options struct {
	// Quality is the JPEG quality (1-100).
	Quality int
	// MaxWidth caps the capture width; 0 keeps the native width.
	MaxWidth int
}

// DefaultOptions returns Options with default values.
func DefaultOptions() Options {
	return Options{Quality: 85}
}

// Sampler extracts still frames from videos.
type Sampler struct {
	grabber  ports.FrameGrabber
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
	opts     Options
}

// New creates a new Sampler.
func New(grabber ports.FrameGrabber, renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger, opts Options) *Sampler {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultOptions().Quality
	}
	return &Sampler{
		grabber:  grabber,
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("sampler"),
		opts:     opts,
	}
}

// Extract captures a frame at every k*interval < duration, starting at k = 0,
// and passes each one to onFrame in order.
//
// Decode failures end extraction without an error; frames already delivered
// stay delivered. When ctx is cancelled no further seek is issued, onFrame is
// not called again, and ctx.Err() is returned. An error returned by onFrame
// stops extraction and is returned as is.
func (s *Sampler) Extract(ctx context.Context, src *pipeline.VideoSource, interval float64, onFrame pipeline.FrameHandler) error {
	if !(interval > 0) || math.IsInf(interval, 0) {
		return ErrInvalidInterval
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	handle, err := s.grabber.Open(ctx, src.Path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Could not open %s: %v", src.Name, err)
		return nil
	}
	defer func() {
		if err := handle.Close(); err != nil {
			s.logger.Debug("Closing decoder for %s: %v", src.Name, err)
		}
	}()

	info := handle.Info()
	if !(info.DurationSeconds > 0) {
		s.logger.Debug("%s has no playable duration", src.Name)
		return nil
	}

	var surface ports.Surface
	defer func() {
		if surface != nil {
			surface.Release()
		}
	}()

	s.logger.Debug("Sampling %s: %.2fs every %.2fs", src.Name, info.DurationSeconds, interval)

	for k := 0; ; k++ {
		// Multiplying avoids the drift of repeated addition.
		target := float64(k) * interval
		if target >= info.DurationSeconds {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		img, position, err := handle.Seek(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Debug("Decoding %s stopped at %.2fs: %v", src.Name, target, err)
			return nil
		}

		if surface == nil {
			w, h := s.surfaceSize(info, img)
			surface = s.renderer.NewSurface(w, h)
		}
		surface.Draw(img)

		data, err := s.renderer.EncodeImage(surface.Image(), ports.FormatJPEG, s.opts.Quality)
		if err != nil {
			s.logger.Debug("Encoding frame %d of %s failed: %v", k, src.Name, err)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		frame := pipeline.ExtractedFrame{
			ImageData:        data,
			MimeType:         ports.FormatJPEG.MimeType(),
			TimestampSeconds: position,
			SourceName:       src.Name,
			Index:            k,
		}

		if s.sink.Enabled() {
			if err := s.sink.SaveFrame(src.Name, k, data); err != nil {
				s.logger.Debug("Saving debug frame failed: %v", err)
			}
		}

		if err := onFrame(frame); err != nil {
			return err
		}
	}

	return nil
}

// surfaceSize picks the capture size from the container metadata, falling
// back to the first decoded frame, and applies MaxWidth.
func (s *Sampler) surfaceSize(info ports.VideoInfo, first image.Image) (int, int) {
	w, h := info.Width, info.Height
	if w <= 0 || h <= 0 {
		b := first.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if s.opts.MaxWidth > 0 && w > s.opts.MaxWidth {
		h = int(math.Round(float64(h) * float64(s.opts.MaxWidth) / float64(w)))
		w = s.opts.MaxWidth
		if h < 1 {
			h = 1
		}
	}
	return w, h
}
