package mocks

import (
	"fmt"
	"sync"

	"github.com/user/ainspire/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Frames          map[string][]byte
	Classifications map[string][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:         enabled,
		Frames:          make(map[string][]byte),
		Classifications: make(map[string][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveFrame(sourceName string, index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[fmt.Sprintf("%s#%d", sourceName, index)] = data
	return nil
}

func (m *DebugSink) SaveClassification(jobID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Classifications[jobID] = data
	return nil
}

// FrameCount returns the number of saved frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
