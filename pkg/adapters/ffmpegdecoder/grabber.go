package ffmpegdecoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// Options configures the Grabber.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

// Grabber opens decode handles that run one ffmpeg process per seek.
type Grabber struct {
	ffmpegPath string
	prober     ports.VideoProber
}

// New locates ffmpeg and creates a Grabber. prober supplies video metadata
// when a handle is opened; when nil, ffprobe is used.
func New(prober ports.VideoProber, opts Options) (*Grabber, error) {
	ffmpegPath, err := FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	if prober == nil {
		ffprobePath, err := FindFFprobe(ffmpegPath)
		if err != nil {
			return nil, err
		}
		prober = NewProber(ffprobePath)
	}
	return &Grabber{ffmpegPath: ffmpegPath, prober: prober}, nil
}

// FFmpegPath returns the ffmpeg binary in use.
func (g *Grabber) FFmpegPath() string {
	return g.ffmpegPath
}

// Open probes the video and returns a handle for seeking in it.
func (g *Grabber) Open(ctx context.Context, path string) (ports.DecodeHandle, error) {
	info, err := g.prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	return &handle{ffmpegPath: g.ffmpegPath, path: path, info: info}, nil
}

var _ ports.FrameGrabber = (*Grabber)(nil)

type handle struct {
	ffmpegPath string
	path       string
	info       ports.VideoInfo

	mu     sync.Mutex
	closed bool
}

func (h *handle) Info() ports.VideoInfo {
	return h.info
}

// Seek decodes the frame at seconds. Input seeking with -ss before -i makes
// ffmpeg decode from the preceding keyframe up to the exact position, so the
// reached position equals the request.
func (h *handle) Seek(ctx context.Context, seconds float64) (image.Image, float64, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, 0, fmt.Errorf("seek %s: handle closed", h.path)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.ffmpegPath,
		"-v", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", h.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("ffmpeg seek %.3fs: %w: %s", seconds, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, 0, fmt.Errorf("%w %.3fs", ErrNoFrame, seconds)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, 0, fmt.Errorf("decode frame at %.3fs: %w", seconds, err)
	}
	return img, seconds, nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
