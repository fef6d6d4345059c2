package events

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
)

// DefaultBuffer is the per-subscriber queue size used when none is configured.
const DefaultBuffer = 64

// Recorder receives delivery statistics. The metrics package implements it.
type Recorder interface {
	EventPublished(kind Kind)
	EventDropped(kind Kind)
}

// Publisher is the publishing side of a Bus.
type Publisher interface {
	Publish(e Event) (int, error)
}

// Filter selects the events a subscriber receives.
type Filter func(Event) bool

// ForDomains returns a filter that passes events of the given domains.
func ForDomains(domains ...Domain) Filter {
	return func(e Event) bool {
		return slices.Contains(domains, e.Domain)
	}
}

// Bus broadcasts events to subscribers. Every subscriber owns a bounded queue;
// when it is full the new event is dropped for that subscriber only, so
// Publish never blocks on a slow reader.
type Bus struct {
	mu       sync.RWMutex
	subs     map[uint64]*Subscription
	nextID   uint64
	buffer   int
	closed   bool
	recorder Recorder
}

// NewBus creates a bus whose subscribers get queues of the given size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// SetRecorder installs a statistics sink. Call before publishing starts.
func (b *Bus) SetRecorder(r Recorder) {
	b.mu.Lock()
	b.recorder = r
	b.mu.Unlock()
}

// Subscribe registers a new subscriber. With no filters it receives every event.
func (b *Bus) Subscribe(filters ...Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      b.nextID,
		ch:      make(chan Event, b.buffer),
		filters: filters,
		bus:     b,
	}
	if b.closed {
		close(sub.ch)
		sub.closed = true
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers e to every matching subscriber without blocking and
// returns how many subscribers received it.
func (b *Bus) Publish(e Event) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, errors.NewInvalidStateError("notification bus is closed")
	}
	if b.recorder != nil {
		b.recorder.EventPublished(e.Kind)
	}

	delivered := 0
	for _, sub := range b.subs {
		if !sub.matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
			delivered++
		default:
			n := sub.dropped.Add(1)
			if b.recorder != nil {
				b.recorder.EventDropped(e.Kind)
			}
			log.Debugf("Subscriber %d queue full, dropped %s (%d dropped so far)", sub.id, e.Kind, n)
		}
	}
	return delivered, nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes fail with InvalidState.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		sub.closed = true
		delete(b.subs, id)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.closed {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
	sub.closed = true
}

// Subscription is one subscriber's queue.
type Subscription struct {
	id      uint64
	ch      chan Event
	filters []Filter
	dropped atomic.Uint64
	bus     *Bus
	// closed is guarded by bus.mu.
	closed bool
}

// C returns the event channel. It is closed when the subscription or the bus closes.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Dropped returns how many events were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

func (s *Subscription) matches(e Event) bool {
	for _, f := range s.filters {
		if !f(e) {
			return false
		}
	}
	return true
}
