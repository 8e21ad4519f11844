package event

import (
	"context"
	"sync"
	"time"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Record is one event observed by a Monitor.
type Record struct {
	Topic     topic.Topic
	Source    string
	Component string
	At        time.Time
	Payload   any
}

// Monitor keeps a bounded history of every event on the bus. It backs the
// event-bus debug view.
type Monitor struct {
	mu       sync.Mutex
	records  []Record
	next     int
	full     bool
	counts   map[topic.Topic]int
	sub      Subscription
	capacity int
}

// NewMonitor subscribes a monitor to "**" at low priority.
func NewMonitor(bus Bus, capacity int) (*Monitor, error) {
	if capacity <= 0 {
		capacity = 256
	}
	m := &Monitor{
		records:  make([]Record, capacity),
		counts:   make(map[topic.Topic]int),
		capacity: capacity,
	}
	sub, err := bus.SubscribeFunc(topic.All, m.handle, WithPriority(PriorityLow))
	if err != nil {
		return nil, err
	}
	m.sub = sub
	return m, nil
}

func (m *Monitor) handle(_ context.Context, ev any) error {
	env := ToEnvelope(ev)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[m.next] = Record{
		Topic:     env.Topic,
		Source:    env.Metadata.Source,
		Component: env.Metadata.Component,
		At:        env.Metadata.Timestamp,
		Payload:   env.Payload,
	}
	m.next = (m.next + 1) % m.capacity
	if m.next == 0 {
		m.full = true
	}
	m.counts[env.Topic]++
	return nil
}

// Recent returns up to n most recent records, oldest first.
func (m *Monitor) Recent(n int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := m.next
	if m.full {
		size = m.capacity
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Record, 0, n)
	for i := size - n; i < size; i++ {
		idx := i
		if m.full {
			idx = (m.next + i) % m.capacity
		}
		out = append(out, m.records[idx])
	}
	return out
}

// Count returns how many events were seen on t.
func (m *Monitor) Count(t topic.Topic) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[t]
}

// Close detaches the monitor from the bus.
func (m *Monitor) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
}
