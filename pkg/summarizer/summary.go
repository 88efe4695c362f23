// Package summarizer provides summary generation for extraction runs.
package summarizer

import (
	"sort"
	"time"

	"github.com/user/ainspire/pkg/pipeline"
)

// Summary contains all data collected during one extraction run.
type Summary struct {
	GeneratedAt time.Time
	Duration    time.Duration

	Settings Settings

	// Videos in the order they were processed.
	Videos []VideoInfo

	Jobs JobInfo

	// LastError is the credential failure that stopped classification.
	LastError string

	// Labels counts each label per category over the final collection.
	Labels map[pipeline.Category][]LabelCount
}

// Settings contains the run configuration.
type Settings struct {
	IntervalSeconds float64
	JPEGQuality     int
	MaxFrameWidth   int
	Model           string
	Language        string
}

// VideoInfo describes one processed video.
type VideoInfo struct {
	Name   string
	Frames int
}

// JobInfo counts classification outcomes.
type JobInfo struct {
	Classified int
	Declined   int
	Skipped    int
	Failed     int
	Drained    int
}

// Total returns the number of settled jobs.
func (j JobInfo) Total() int {
	return j.Classified + j.Declined + j.Skipped + j.Failed + j.Drained
}

// LabelCount is one histogram bucket.
type LabelCount struct {
	Label string
	Count int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
		Labels:      make(map[pipeline.Category][]LabelCount),
	}
}

// TotalFrames returns the number of frames extracted across all videos.
func (s *Summary) TotalFrames() int {
	n := 0
	for _, v := range s.Videos {
		n += v.Frames
	}
	return n
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets the run configuration.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithDuration sets the wall-clock duration of the run.
func (b *Builder) WithDuration(d time.Duration) *Builder {
	b.summary.Duration = d
	return b
}

// WithVideo appends a processed video.
func (b *Builder) WithVideo(name string, frames int) *Builder {
	b.summary.Videos = append(b.summary.Videos, VideoInfo{Name: name, Frames: frames})
	return b
}

// WithJobs sets the classification outcome counts.
func (b *Builder) WithJobs(jobs JobInfo) *Builder {
	b.summary.Jobs = jobs
	return b
}

// WithLastError records the error that stopped classification.
func (b *Builder) WithLastError(err error) *Builder {
	if err != nil {
		b.summary.LastError = err.Error()
	}
	return b
}

// WithImages computes the label histogram of images. Buckets are ordered by
// descending count, then label.
func (b *Builder) WithImages(images []pipeline.ReferenceImage) *Builder {
	labels := make(map[pipeline.Category][]LabelCount)
	for _, cat := range pipeline.Categories {
		counts := make(map[string]int)
		for _, img := range images {
			if v, ok := img.Classifications[cat]; ok {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			continue
		}
		buckets := make([]LabelCount, 0, len(counts))
		for label, n := range counts {
			buckets = append(buckets, LabelCount{Label: label, Count: n})
		}
		sort.Slice(buckets, func(i, j int) bool {
			if buckets[i].Count != buckets[j].Count {
				return buckets[i].Count > buckets[j].Count
			}
			return buckets[i].Label < buckets[j].Label
		})
		labels[cat] = buckets
	}
	b.summary.Labels = labels
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
