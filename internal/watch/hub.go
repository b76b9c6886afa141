// Package watch provides in-process change notification for day records.
// Every committed write publishes one event; subscribers use events as an
// invalidation signal and re-read the store for current state.
package watch

import "sync"

type Event struct {
	UserID string
	Date   string
}

type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The channel is buffered; a subscriber that falls behind loses
// events rather than blocking writers, which is safe because events carry no
// state of their own.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
