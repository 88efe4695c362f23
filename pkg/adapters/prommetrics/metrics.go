// Package prommetrics exports pipeline counters in Prometheus format.
package prommetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/ainspire/pkg/ports"
)

// Metrics implements ports.Metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesExtracted prometheus.Counter
	videosProcessed prometheus.Counter
	jobsSettled     *prometheus.CounterVec
	queuePending    *prometheus.GaugeVec
}

// New creates Metrics registered on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		framesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ainspire_frames_extracted_total",
			Help: "Total number of frames extracted from videos",
		}),
		videosProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ainspire_videos_processed_total",
			Help: "Total number of videos that left the video queue",
		}),
		jobsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ainspire_jobs_settled_total",
			Help: "Total number of classification jobs settled, by outcome",
		}, []string{"outcome"}),
		queuePending: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ainspire_queue_pending",
			Help: "Number of items waiting in each queue",
		}, []string{"queue"}),
	}
}

func (m *Metrics) FrameExtracted() {
	m.framesExtracted.Inc()
}

func (m *Metrics) VideoProcessed() {
	m.videosProcessed.Inc()
}

func (m *Metrics) JobSettled(outcome string) {
	m.jobsSettled.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QueuePending(queue string, n int) {
	m.queuePending.WithLabelValues(queue).Set(float64(n))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ ports.Metrics = (*Metrics)(nil)
