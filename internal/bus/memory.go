package bus

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Transport for tests and single-process runs.
// Delivery is non-blocking per subscriber: a full subscriber buffer
// drops messages rather than stalling the publisher, matching the
// semantics runs can expect from the Redis transport.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[string]*memorySubscription // channel → sub id → sub
	closed bool
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[string]*memorySubscription)}
}

func (m *Memory) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, channel string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &memorySubscription{
		id:      uuid.NewString(),
		channel: channel,
		ch:      make(chan []byte, 16),
		bus:     m,
	}
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[string]*memorySubscription)
	}
	m.subs[channel][sub.id] = sub
	return sub, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, chSubs := range m.subs {
		for _, sub := range chSubs {
			close(sub.ch)
		}
	}
	m.subs = make(map[string]map[string]*memorySubscription)
	return nil
}

func (m *Memory) remove(sub *memorySubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chSubs, ok := m.subs[sub.channel]; ok {
		if _, live := chSubs[sub.id]; live {
			delete(chSubs, sub.id)
			close(sub.ch)
		}
	}
}

type memorySubscription struct {
	id      string
	channel string
	ch      chan []byte
	bus     *Memory
	once    sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.once.Do(func() { s.bus.remove(s) })
	return nil
}
