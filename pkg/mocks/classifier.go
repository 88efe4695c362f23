package mocks

import (
	"context"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// Classifier is a mock implementation of ports.Classifier.
// It records every call and tracks the peak number of concurrent calls.
type Classifier struct {
	ClassifyFunc func(ctx context.Context, imageData []byte, mimeType string) (map[string]string, error)

	mu       sync.Mutex
	calls    int
	inFlight int
	peak     int
}

func (m *Classifier) Classify(ctx context.Context, imageData []byte, mimeType string) (map[string]string, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, imageData, mimeType)
	}
	return map[string]string{"composition": "Wide Shot"}, nil
}

// Calls returns the number of Classify calls.
func (m *Classifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// PeakConcurrency returns the highest number of overlapping calls observed.
func (m *Classifier) PeakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

var _ ports.Classifier = (*Classifier)(nil)
