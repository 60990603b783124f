package testutils

import (
	"context"
	"sync"

	"github.com/finsightco/finsight/pkg/eventstream"
)

// MockPublisher records published analysis events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*eventstream.AnalysisCompletedEvent
	Closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishAnalysis(_ context.Context, event *eventstream.AnalysisCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Published returns a snapshot of the recorded events.
func (m *MockPublisher) Published() []*eventstream.AnalysisCompletedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.AnalysisCompletedEvent(nil), m.Events...)
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
