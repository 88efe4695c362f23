package ffmpegdecoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/user/ainspire/pkg/ports"
)

// Prober reads video metadata with ffprobe.
type Prober struct {
	ffprobePath string
}

// NewProber creates a Prober using the given ffprobe binary.
func NewProber(ffprobePath string) *Prober {
	return &Prober{ffprobePath: ffprobePath}
}

// Probe returns duration, dimensions and codec of the first video stream.
func (p *Prober) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,duration:format=duration",
		"-of", "json",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ports.VideoInfo{}, ctx.Err()
		}
		return ports.VideoInfo{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return parseProbe(stdout.Bytes())
}

type probeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbe prefers the stream duration and falls back to the container's.
// Some containers (WebM, MKV) only report the latter.
func parseProbe(data []byte) (ports.VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return ports.VideoInfo{}, fmt.Errorf("no video stream")
	}

	s := out.Streams[0]
	info := ports.VideoInfo{
		Width:  s.Width,
		Height: s.Height,
		Codec:  s.CodecName,
	}
	for _, d := range []string{s.Duration, out.Format.Duration} {
		if v, err := strconv.ParseFloat(d, 64); err == nil && v > 0 {
			info.DurationSeconds = v
			break
		}
	}
	return info, nil
}

var _ ports.VideoProber = (*Prober)(nil)
