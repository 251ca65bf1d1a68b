package server

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/devbydaniel/voicerec/internal/domain/recording"
)

// Hub fans interruption notifications out to event-stream subscribers. Slow
// subscribers miss events rather than stall the controller.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan recording.Notification]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan recording.Notification]struct{})}
}

// Notify is a recording.Notifier.
func (h *Hub) Notify(n recording.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribe returns a channel of notifications, closed by cancel or Close.
func (h *Hub) Subscribe() (<-chan recording.Notification, func()) {
	ch := make(chan recording.Notification, 16)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// Events streams interruption notifications as server-sent events.
func (s *Server) Events(c *gin.Context) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"status": s.uc.Status.Execute().Status.String()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("interruption", n)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
