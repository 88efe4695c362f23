// Package smartprobe picks the cheapest way to read video metadata: the
// in-process MP4 parser for ISO-BMFF files, ffprobe for everything else.
package smartprobe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/ainspire/pkg/ports"
)

// Backend names the prober that produced a result.
type Backend string

const (
	// BackendMP4 is the in-process mp4ff parser.
	BackendMP4 Backend = "mp4"
	// BackendFFprobe is the external ffprobe tool.
	BackendFFprobe Backend = "ffprobe"
)

// ErrNoProber is returned when no prober can handle a file.
var ErrNoProber = errors.New("smartprobe: no prober available")

// mp4Extensions are the containers the MP4 parser understands.
var mp4Extensions = map[string]bool{".mp4": true, ".m4v": true, ".mov": true}

// Prober implements ports.VideoProber by delegating to an MP4 prober and
// an optional ffprobe fallback.
type Prober struct {
	mp4      ports.VideoProber
	fallback ports.VideoProber
	logger   ports.Logger
}

// New creates a Prober. Either prober may be nil.
func New(mp4 ports.VideoProber, fallback ports.VideoProber, logger ports.Logger) *Prober {
	return &Prober{
		mp4:      mp4,
		fallback: fallback,
		logger:   logger.WithComponent("probe"),
	}
}

// Probe tries the MP4 parser for MP4-family files, then the fallback.
// A zero duration from the parser also triggers the fallback.
func (p *Prober) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	info, _, err := p.ProbeWithBackend(ctx, path)
	return info, err
}

// ProbeWithBackend is Probe that also reports which backend answered.
func (p *Prober) ProbeWithBackend(ctx context.Context, path string) (ports.VideoInfo, Backend, error) {
	var mp4Err error
	if p.mp4 != nil && mp4Extensions[strings.ToLower(filepath.Ext(path))] {
		info, err := p.mp4.Probe(ctx, path)
		if err == nil && info.DurationSeconds > 0 {
			return info, BackendMP4, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.VideoInfo{}, "", ctxErr
		}
		mp4Err = err
		if mp4Err == nil {
			mp4Err = errors.New("no duration in container")
		}
		p.logger.Debug("MP4 parser could not read %s, trying ffprobe: %v", filepath.Base(path), mp4Err)
	}

	if p.fallback == nil {
		if mp4Err != nil {
			return ports.VideoInfo{}, "", fmt.Errorf("%w: %v", ErrNoProber, mp4Err)
		}
		return ports.VideoInfo{}, "", ErrNoProber
	}

	info, err := p.fallback.Probe(ctx, path)
	if err != nil {
		return ports.VideoInfo{}, "", err
	}
	return info, BackendFFprobe, nil
}

var _ ports.VideoProber = (*Prober)(nil)
