package sample

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/user/ainspire/pkg/adapters/logger"
	"github.com/user/ainspire/pkg/mocks"
	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
)

func newSampler(grabber *mocks.FrameGrabber, renderer *mocks.Renderer, sink ports.DebugSink) *Sampler {
	return New(grabber, renderer, sink, logger.NewNoop(), DefaultOptions())
}

func collect(frames *[]pipeline.ExtractedFrame) pipeline.FrameHandler {
	return func(f pipeline.ExtractedFrame) error {
		*frames = append(*frames, f)
		return nil
	}
}

func TestSampler_Extract_Coverage(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		interval float64
		want     []float64
	}{
		{"interval 5 duration 12", 12, 5, []float64{0, 5, 10}},
		{"exact multiple", 10, 5, []float64{0, 5}},
		{"shorter than interval", 2, 3, []float64{0}},
		{"fractional interval", 1, 0.25, []float64{0, 0.25, 0.5, 0.75}},
		{"zero duration", 0, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grabber := &mocks.FrameGrabber{Info: ports.VideoInfo{DurationSeconds: tt.duration, Width: 64, Height: 36}}
			renderer := &mocks.Renderer{}
			var frames []pipeline.ExtractedFrame

			src := pipeline.NewVideoSource("clip.mp4", "/videos/clip.mp4", "video/mp4", nil)
			err := newSampler(grabber, renderer, mocks.NewDebugSink(false)).Extract(context.Background(), src, tt.interval, collect(&frames))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(frames) != len(tt.want) {
				t.Fatalf("expected %d frames, got %d", len(tt.want), len(frames))
			}
			for i, f := range frames {
				if math.Abs(f.TimestampSeconds-tt.want[i]) > 1e-9 {
					t.Errorf("frame %d at %.3fs, want %.3fs", i, f.TimestampSeconds, tt.want[i])
				}
				if f.SourceName != "clip.mp4" {
					t.Errorf("frame %d source = %q", i, f.SourceName)
				}
				if f.MimeType != "image/jpeg" || len(f.ImageData) == 0 {
					t.Errorf("frame %d has no JPEG data", i)
				}
			}
		})
	}
}

func TestSampler_Extract_ReportsAchievedPosition(t *testing.T) {
	grabber := &mocks.FrameGrabber{
		Info: ports.VideoInfo{DurationSeconds: 12, Width: 64, Height: 36},
		SeekFunc: func(ctx context.Context, seconds float64) (image.Image, float64, error) {
			// Snap to a keyframe 0.1s earlier.
			return image.NewRGBA(image.Rect(0, 0, 64, 36)), math.Max(0, seconds-0.1), nil
		},
	}
	var frames []pipeline.ExtractedFrame

	src := pipeline.NewVideoSource("clip.mp4", "clip.mp4", "", nil)
	if err := newSampler(grabber, &mocks.Renderer{}, mocks.NewDebugSink(false)).Extract(context.Background(), src, 5, collect(&frames)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if math.Abs(frames[1].TimestampSeconds-4.9) > 1e-9 {
		t.Errorf("expected achieved position 4.9, got %v", frames[1].TimestampSeconds)
	}
}

func TestSampler_Extract_DecodeErrorKeepsDeliveredFrames(t *testing.T) {
	grabber := &mocks.FrameGrabber{
		Info: ports.VideoInfo{DurationSeconds: 30, Width: 64, Height: 36},
		SeekFunc: func(ctx context.Context, seconds float64) (image.Image, float64, error) {
			if seconds >= 10 {
				return nil, 0, errors.New("corrupt packet")
			}
			return image.NewRGBA(image.Rect(0, 0, 64, 36)), seconds, nil
		},
	}
	renderer := &mocks.Renderer{}
	var frames []pipeline.ExtractedFrame

	src := pipeline.NewVideoSource("broken.mp4", "broken.mp4", "", nil)
	err := newSampler(grabber, renderer, mocks.NewDebugSink(false)).Extract(context.Background(), src, 5, collect(&frames))
	if err != nil {
		t.Fatalf("decode error should not propagate, got %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("expected 2 frames before the failure, got %d", len(frames))
	}
	if closes := grabber.Handles[0].Closes(); closes != 1 {
		t.Errorf("expected handle closed once, got %d", closes)
	}
	if releases := renderer.Surfaces[0].Releases(); releases != 1 {
		t.Errorf("expected surface released once, got %d", releases)
	}
}

func TestSampler_Extract_OpenErrorYieldsNothing(t *testing.T) {
	grabber := &mocks.FrameGrabber{
		OpenFunc: func(ctx context.Context, path string) (ports.DecodeHandle, error) {
			return nil, errors.New("moov atom not found")
		},
	}
	renderer := &mocks.Renderer{}
	called := false

	src := pipeline.NewVideoSource("bad.mp4", "bad.mp4", "", nil)
	err := newSampler(grabber, renderer, mocks.NewDebugSink(false)).Extract(context.Background(), src, 1, func(pipeline.ExtractedFrame) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("onFrame should not be called")
	}
	if renderer.SurfaceCount() != 0 {
		t.Error("no surface should be allocated when open fails")
	}
}

func TestSampler_Extract_CancelStopsBeforeNextSeek(t *testing.T) {
	grabber := &mocks.FrameGrabber{Info: ports.VideoInfo{DurationSeconds: 100, Width: 64, Height: 36}}
	renderer := &mocks.Renderer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var frames []pipeline.ExtractedFrame
	onFrame := func(f pipeline.ExtractedFrame) error {
		frames = append(frames, f)
		if len(frames) == 2 {
			cancel()
		}
		return nil
	}

	src := pipeline.NewVideoSource("long.mp4", "long.mp4", "", nil)
	err := newSampler(grabber, renderer, mocks.NewDebugSink(false)).Extract(ctx, src, 1, onFrame)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(frames) != 2 {
		t.Errorf("expected 2 frames, got %d", len(frames))
	}
	handle := grabber.Handles[0]
	if seeks := len(handle.Seeks()); seeks != 2 {
		t.Errorf("expected no seek after cancel, got %d seeks", seeks)
	}
	if handle.Closes() != 1 {
		t.Errorf("expected handle closed once, got %d", handle.Closes())
	}
	if renderer.Surfaces[0].Releases() != 1 {
		t.Errorf("expected surface released once, got %d", renderer.Surfaces[0].Releases())
	}
}

func TestSampler_Extract_CancelDuringSeek(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grabber := &mocks.FrameGrabber{
		Info: ports.VideoInfo{DurationSeconds: 10, Width: 64, Height: 36},
		SeekFunc: func(ctx context.Context, seconds float64) (image.Image, float64, error) {
			if seconds > 0 {
				cancel()
				return nil, 0, ctx.Err()
			}
			return image.NewRGBA(image.Rect(0, 0, 64, 36)), seconds, nil
		},
	}

	var frames []pipeline.ExtractedFrame
	src := pipeline.NewVideoSource("clip.mp4", "clip.mp4", "", nil)
	err := newSampler(grabber, &mocks.Renderer{}, mocks.NewDebugSink(false)).Extract(ctx, src, 1, collect(&frames))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(frames) != 1 {
		t.Errorf("expected 1 frame, got %d", len(frames))
	}
	if grabber.Handles[0].Closes() != 1 {
		t.Error("handle should be closed")
	}
}

func TestSampler_Extract_HandlerErrorStops(t *testing.T) {
	grabber := &mocks.FrameGrabber{Info: ports.VideoInfo{DurationSeconds: 10, Width: 64, Height: 36}}
	stop := errors.New("consumer gone")
	calls := 0

	src := pipeline.NewVideoSource("clip.mp4", "clip.mp4", "", nil)
	err := newSampler(grabber, &mocks.Renderer{}, mocks.NewDebugSink(false)).Extract(context.Background(), src, 1, func(pipeline.ExtractedFrame) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestSampler_Extract_InvalidInterval(t *testing.T) {
	for _, interval := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		grabber := &mocks.FrameGrabber{}
		src := pipeline.NewVideoSource("clip.mp4", "clip.mp4", "", nil)
		err := newSampler(grabber, &mocks.Renderer{}, mocks.NewDebugSink(false)).Extract(context.Background(), src, interval, collect(new([]pipeline.ExtractedFrame)))
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("interval %v: expected ErrInvalidInterval, got %v", interval, err)
		}
		if len(grabber.OpenedPaths()) != 0 {
			t.Errorf("interval %v: video should not be opened", interval)
		}
	}
}

func TestSampler_Extract_MaxWidthAndSink(t *testing.T) {
	grabber := &mocks.FrameGrabber{Info: ports.VideoInfo{DurationSeconds: 2, Width: 1920, Height: 1080}}
	renderer := &mocks.Renderer{}
	sink := mocks.NewDebugSink(true)

	s := New(grabber, renderer, sink, logger.NewNoop(), Options{Quality: 70, MaxWidth: 640})
	src := pipeline.NewVideoSource("hd.mp4", "hd.mp4", "", nil)
	if err := s.Extract(context.Background(), src, 1, collect(new([]pipeline.ExtractedFrame))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if renderer.SurfaceCount() != 1 {
		t.Fatalf("expected one surface per video, got %d", renderer.SurfaceCount())
	}
	surface := renderer.Surfaces[0]
	if surface.Width != 640 || surface.Height != 360 {
		t.Errorf("expected 640x360 surface, got %dx%d", surface.Width, surface.Height)
	}
	if surface.Draws() != 2 {
		t.Errorf("expected 2 draws, got %d", surface.Draws())
	}
	if sink.FrameCount() != 2 {
		t.Errorf("expected 2 debug frames, got %d", sink.FrameCount())
	}
}
