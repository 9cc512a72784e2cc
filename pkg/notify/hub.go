package notify

import "sync"

const defaultBuffer = 16

// Hub is an in-process publish/subscribe broadcast keyed by channel name
// (user:<id>, product:<id>). Delivery is best-effort: publishing to a
// channel with no subscribers is a no-op, and a subscriber that stops
// draining loses events rather than blocking the publisher. Dashboards
// fall back to polling, so no replay is kept.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan Event
	nextID int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int64]chan Event)}
}

// Subscribe registers a listener on a channel name. The returned cancel
// func unregisters it and closes the event channel; it is safe to call
// more than once.
func (h *Hub) Subscribe(channel string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[channel] == nil {
		h.subs[channel] = make(map[int64]chan Event)
	}
	h.nextID++
	id := h.nextID
	ch := make(chan Event, defaultBuffer)
	h.subs[channel][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs := h.subs[channel]; subs != nil {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.subs, channel)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber of the channel
// without ever blocking the caller. Returns how many subscribers
// received it.
func (h *Hub) Publish(channel string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, ch := range h.subs[channel] {
		select {
		case ch <- ev:
			delivered++
		default:
			// Subscriber buffer full: drop rather than block.
		}
	}
	return delivered
}
