package mocks

import (
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// Metrics records counter updates in memory.
type Metrics struct {
	mu       sync.Mutex
	Frames   int
	Videos   int
	Outcomes map[string]int
	Pending  map[string]int
}

// NewMetrics creates an empty Metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{
		Outcomes: make(map[string]int),
		Pending:  make(map[string]int),
	}
}

func (m *Metrics) FrameExtracted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames++
}

func (m *Metrics) VideoProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Videos++
}

func (m *Metrics) JobSettled(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[outcome]++
}

func (m *Metrics) QueuePending(queue string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pending[queue] = n
}

// Outcome returns the count recorded for one outcome.
func (m *Metrics) Outcome(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Outcomes[name]
}

var _ ports.Metrics = (*Metrics)(nil)
