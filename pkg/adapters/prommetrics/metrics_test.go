package prommetrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FrameExtracted()
	m.FrameExtracted()
	m.VideoProcessed()
	m.JobSettled("classified")
	m.JobSettled("classified")
	m.JobSettled("failed")
	m.QueuePending("video", 3)
	m.QueuePending("video", 1)

	if got := testutil.ToFloat64(m.framesExtracted); got != 2 {
		t.Errorf("frames: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.videosProcessed); got != 1 {
		t.Errorf("videos: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.jobsSettled.WithLabelValues("classified")); got != 2 {
		t.Errorf("classified: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.queuePending.WithLabelValues("video")); got != 1 {
		t.Errorf("pending gauge should hold the last value, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.JobSettled("skipped")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `ainspire_jobs_settled_total{outcome="skipped"} 1`) {
		t.Errorf("expected settled counter in scrape output:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected Go runtime metrics")
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.FrameExtracted()
	if got := testutil.ToFloat64(b.framesExtracted); got != 0 {
		t.Errorf("registries should not share counters, got %v", got)
	}
}
