package spectate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/brensch/gridsnakes/view"
)

// Hub keeps the latest frame and fans it out to every spectator.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Connection
	frame   *view.Frame
	encoded []byte
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{logger: logger, clients: make(map[string]*Connection)}
}

// Add registers a spectator and queues the latest frame for it.
func (h *Hub) Add(id string, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = c
	if h.encoded != nil {
		c.Enqueue(h.encoded)
	}
	h.logger.Info("spectator joined", "id", id, "spectators", len(h.clients))
}

// Remove unregisters and closes a spectator.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		c.Close()
		delete(h.clients, id)
		h.logger.Info("spectator left", "id", id, "spectators", len(h.clients))
	}
}

// Broadcast stores f as the latest frame and sends it to every spectator.
// Spectators that cannot keep up are dropped.
func (h *Hub) Broadcast(f view.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = &f
	h.encoded = b
	for id, c := range h.clients {
		if !c.Enqueue(b) {
			h.logger.Warn("dropping slow spectator", "id", id)
			c.Close()
			delete(h.clients, id)
		}
	}
	return nil
}

// Latest returns the last broadcast frame.
func (h *Hub) Latest() (view.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.frame == nil {
		return view.Frame{}, false
	}
	return *h.frame, true
}

// Count is the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}
