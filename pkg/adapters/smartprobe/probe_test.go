package smartprobe

import (
	"context"
	"errors"
	"testing"

	"github.com/user/ainspire/pkg/adapters/logger"
	"github.com/user/ainspire/pkg/mocks"
	"github.com/user/ainspire/pkg/ports"
)

func prober(info ports.VideoInfo, err error, calls *int) *mocks.VideoProber {
	return &mocks.VideoProber{
		ProbeFunc: func(ctx context.Context, path string) (ports.VideoInfo, error) {
			*calls++
			return info, err
		},
	}
}

func TestProber_Selection(t *testing.T) {
	good := ports.VideoInfo{DurationSeconds: 10, Codec: "h264"}
	fromFFprobe := ports.VideoInfo{DurationSeconds: 9.5, Codec: "vp9"}

	tests := []struct {
		name        string
		path        string
		mp4Info     ports.VideoInfo
		mp4Err      error
		wantBackend Backend
		wantMP4     int
		wantFF      int
	}{
		{"mp4 parsed in process", "clip.MP4", good, nil, BackendMP4, 1, 0},
		{"webm skips parser", "clip.webm", good, nil, BackendFFprobe, 0, 1},
		{"parser error falls back", "clip.mov", ports.VideoInfo{}, errors.New("bad box"), BackendFFprobe, 1, 1},
		{"zero duration falls back", "clip.m4v", ports.VideoInfo{Codec: "h264"}, nil, BackendFFprobe, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mp4Calls, ffCalls int
			p := New(prober(tt.mp4Info, tt.mp4Err, &mp4Calls), prober(fromFFprobe, nil, &ffCalls), logger.NewNoop())

			_, backend, err := p.ProbeWithBackend(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if backend != tt.wantBackend {
				t.Errorf("backend: got %s, want %s", backend, tt.wantBackend)
			}
			if mp4Calls != tt.wantMP4 || ffCalls != tt.wantFF {
				t.Errorf("calls: mp4=%d ffprobe=%d, want %d/%d", mp4Calls, ffCalls, tt.wantMP4, tt.wantFF)
			}
		})
	}
}

func TestProber_NoFallback(t *testing.T) {
	var calls int
	p := New(prober(ports.VideoInfo{}, errors.New("truncated"), &calls), nil, logger.NewNoop())

	if _, err := p.Probe(context.Background(), "clip.mp4"); !errors.Is(err, ErrNoProber) {
		t.Errorf("expected ErrNoProber, got %v", err)
	}
	if _, err := p.Probe(context.Background(), "clip.mkv"); !errors.Is(err, ErrNoProber) {
		t.Errorf("expected ErrNoProber for mkv, got %v", err)
	}
}
