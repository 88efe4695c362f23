// Package mp4probe reads video metadata from ISO-BMFF (MP4/MOV) containers
// without spawning external tools.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/ainspire/pkg/ports"
)

// Codec names reported in ports.VideoInfo.
const (
	CodecH264    = "h264"
	CodecHEVC    = "hevc"
	CodecAV1     = "av1"
	CodecVP9     = "vp9"
	CodecUnknown = "unknown"
)

// ErrNoVideoTrack is returned for containers without a video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Prober implements ports.VideoProber for MP4 files.
type Prober struct{}

// New creates a Prober.
func New() *Prober {
	return &Prober{}
}

// Probe opens path and reads its first video track.
func (p *Prober) Probe(ctx context.Context, path string) (ports.VideoInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.VideoInfo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader reads metadata from an MP4 stream.
func ProbeReader(reader io.ReadSeeker) (ports.VideoInfo, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probeFile(mp4File)
}

func probeFile(mp4File *mp4.File) (ports.VideoInfo, error) {
	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	trak := videoTrack(moov)
	if trak == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	info := ports.VideoInfo{Codec: CodecUnknown}
	if trak.Tkhd != nil {
		info.Width = int(uint32(trak.Tkhd.Width) >> 16)
		info.Height = int(uint32(trak.Tkhd.Height) >> 16)
	}
	if stsd := trak.Mdia.Minf.Stbl.Stsd; stsd != nil {
		for _, child := range stsd.Children {
			if codec := codecName(child.Type()); codec != CodecUnknown {
				info.Codec = codec
			}
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 {
				info.Width = int(vse.Width)
				info.Height = int(vse.Height)
			}
		}
	}

	info.DurationSeconds = trackDuration(trak, moov)
	if info.DurationSeconds == 0 && mp4File.IsFragmented() {
		d, err := fragmentedDuration(mp4File, trak)
		if err != nil {
			return ports.VideoInfo{}, err
		}
		info.DurationSeconds = d
	}
	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

func codecName(boxType string) string {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	default:
		return CodecUnknown
	}
}

// trackDuration reads mdhd, falling back to the movie header.
func trackDuration(trak *mp4.TrakBox, moov *mp4.MoovBox) float64 {
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 && mdhd.Duration > 0 {
		return float64(mdhd.Duration) / float64(mdhd.Timescale)
	}
	if mvhd := moov.Mvhd; mvhd != nil && mvhd.Timescale > 0 && mvhd.Duration > 0 {
		return float64(mvhd.Duration) / float64(mvhd.Timescale)
	}
	return 0
}

// fragmentedDuration sums the sample durations of every fragment of the
// track.
func fragmentedDuration(mp4File *mp4.File, trak *mp4.TrakBox) (float64, error) {
	trackID := trak.Tkhd.TrackID
	timescale := uint32(1000)
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var total uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, fmt.Errorf("read fragment samples: %w", err)
			}
			for _, s := range samples {
				total += uint64(s.Dur)
			}
		}
	}
	return float64(total) / float64(timescale), nil
}

var _ ports.VideoProber = (*Prober)(nil)
