package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kharcha/kharcha/internal/middleware"
)

// Events streams the caller's notifications over Server-Sent Events.
// Each message is an "event:"-named frame with a JSON payload. Delivery
// is at-most-once; clients reconcile via GET /api/notifications.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	userID := middleware.GetUserID(r.Context())
	messages, cancel := h.hub.Subscribe(userID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Initial comment so proxies and clients see bytes immediately.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	slog.Debug("event stream opened", "user_id", userID)
	for {
		select {
		case <-r.Context().Done():
			slog.Debug("event stream closed", "user_id", userID)
			return
		case msg := <-messages:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
