package summarizer

import (
	"errors"
	"testing"
	"time"

	"github.com/user/ainspire/pkg/pipeline"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_Videos(t *testing.T) {
	summary := NewBuilder().
		WithVideo("a.mp4", 4).
		WithVideo("b.mov", 0).
		WithVideo("c.webm", 2).
		Build()

	if len(summary.Videos) != 3 || summary.Videos[1].Name != "b.mov" {
		t.Fatalf("unexpected videos %+v", summary.Videos)
	}
	if summary.TotalFrames() != 6 {
		t.Errorf("expected 6 frames, got %d", summary.TotalFrames())
	}
}

func TestBuilder_Jobs(t *testing.T) {
	summary := NewBuilder().
		WithJobs(JobInfo{Classified: 3, Declined: 1, Skipped: 1, Failed: 1, Drained: 2}).
		WithLastError(errors.New("invalid key")).
		Build()

	if summary.Jobs.Total() != 8 {
		t.Errorf("expected 8 settled jobs, got %d", summary.Jobs.Total())
	}
	if summary.LastError != "invalid key" {
		t.Errorf("unexpected last error %q", summary.LastError)
	}

	if NewBuilder().WithLastError(nil).Build().LastError != "" {
		t.Error("nil error should leave LastError empty")
	}
}

func TestBuilder_WithImages(t *testing.T) {
	img := func(c pipeline.Classification) pipeline.ReferenceImage {
		return pipeline.ReferenceImage{Classifications: c}
	}
	summary := NewBuilder().WithImages([]pipeline.ReferenceImage{
		img(pipeline.Classification{pipeline.CategorySetting: "Urban", pipeline.CategoryColor: "Neon"}),
		img(pipeline.Classification{pipeline.CategorySetting: "Nature"}),
		img(pipeline.Classification{pipeline.CategorySetting: "Urban"}),
		img(pipeline.Classification{pipeline.CategorySetting: "Desert"}),
	}).Build()

	setting := summary.Labels[pipeline.CategorySetting]
	want := []LabelCount{{"Urban", 2}, {"Desert", 1}, {"Nature", 1}}
	if len(setting) != len(want) {
		t.Fatalf("got %v, want %v", setting, want)
	}
	for i := range want {
		if setting[i] != want[i] {
			t.Errorf("bucket %d: got %v, want %v", i, setting[i], want[i])
		}
	}
	if _, ok := summary.Labels[pipeline.CategoryLighting]; ok {
		t.Error("categories without labels should be absent")
	}
}
