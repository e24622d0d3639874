package sse

import (
	"sync"
)

// Hub fans messages out to subscribers grouped by topic.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan T]struct{}
	buffer      int
}

// NewHub creates a hub whose subscriber channels hold up to buffer pending messages.
func NewHub[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub[T]{
		subscribers: make(map[string]map[chan T]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a subscriber for topic and returns its channel and cleanup function.
// The channel is closed by cleanup; calling cleanup more than once is safe.
func (h *Hub[T]) Subscribe(topic string) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.buffer)
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan T]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[topic], ch)
			close(ch)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
		})
	}
	return ch, cleanup
}

// Publish sends msg to every subscriber of topic and returns how many were skipped
// because their buffer was full.
func (h *Hub[T]) Publish(topic string, msg T) (dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Slow consumers miss messages rather than block publishers
			dropped++
		}
	}
	return dropped
}

// PublishToMany sends msg to each topic once.
func (h *Hub[T]) PublishToMany(topics []string, msg T) (dropped int) {
	seen := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		dropped += h.Publish(topic, msg)
	}
	return dropped
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub[T]) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub[T]) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
