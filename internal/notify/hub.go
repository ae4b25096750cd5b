package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a serialized event ready to be written to an SSE stream.
type Message struct {
	// Event is the SSE event name.
	Event string
	// Data is the JSON-encoded payload.
	Data []byte
}

// Hub routes events to per-user subscribers. Delivery is at-most-once:
// a subscriber whose buffer is full misses the event, and users with no
// active subscription miss it entirely. The persisted notification row
// remains queryable over REST either way.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Message]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Message]struct{})}
}

// Subscribe registers a new subscriber channel for the user.
// The returned cancel func must be called when the client disconnects.
func (h *Hub) Subscribe(userID string) (<-chan Message, func()) {
	ch := make(chan Message, 8)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Message]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers the event to all of the user's active subscribers.
// Never blocks: a full subscriber buffer drops the event.
func (h *Hub) Publish(userID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "event", event.EventName(), "error", err)
		return
	}
	msg := Message{Event: event.EventName(), Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- msg:
		default:
			slog.Warn("dropping event for slow subscriber", "user_id", userID, "event", msg.Event)
		}
	}
}
