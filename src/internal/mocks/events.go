package mocks

import (
	"sync"

	"github.com/maksimkurb/netctl/src/internal/events"
)

// MockPublisher is a mock implementation of events.Publisher that keeps every
// published event in order.
type MockPublisher struct {
	mu     sync.Mutex
	events []events.Event

	PublishFunc func(e events.Event) (int, error)
}

// Publish records e.
func (m *MockPublisher) Publish(e events.Event) (int, error) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(e)
	}
	return 1, nil
}

// Events returns a copy of the recorded events.
func (m *MockPublisher) Events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Kinds returns the kinds of the recorded events, in order.
func (m *MockPublisher) Kinds() []events.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]events.Kind, 0, len(m.events))
	for _, e := range m.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (m *MockPublisher) Count(kind events.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets the recorded events.
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
