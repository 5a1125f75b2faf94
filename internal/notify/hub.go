package notify

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
)

// Event types pushed over the websocket stream.
const (
	EventSnapshot        = "snapshot"
	EventEarningsUpdate  = "earnings-update"
	EventSessionComplete = "session-complete"
)

// Event is a single frame on the stream: the event type plus the full
// session snapshot it describes.
type Event struct {
	Type    string        `json:"type"`
	Session model.Session `json:"session"`
}

// Hub maintains websocket subscribers keyed by session id and fans events
// out to them. Delivery is fire-and-forget: a slow or disconnected client
// misses frames and falls back to polling.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Client]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

// Register subscribes a client to one session's stream.
func (h *Hub) Register(sessionID string, c *Client) {
	h.mu.Lock()
	clients, ok := h.subs[sessionID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.subs[sessionID] = clients
	}
	clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(sessionID string, c *Client) {
	h.mu.Lock()
	if clients, ok := h.subs[sessionID]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.subs, sessionID)
		}
	}
	h.mu.Unlock()
}

// Publish sends an event to every subscriber of the session.
func (h *Hub) Publish(sessionID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", zap.String("session", sessionID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subs[sessionID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop the frame rather than block the sweep
		}
	}
}

// EarningsUpdate implements the scheduler's Notifier.
func (h *Hub) EarningsUpdate(s model.Session) {
	h.Publish(s.ID, Event{Type: EventEarningsUpdate, Session: s})
}

// SessionComplete implements the scheduler's Notifier.
func (h *Hub) SessionComplete(s model.Session) {
	h.Publish(s.ID, Event{Type: EventSessionComplete, Session: s})
}

// SubscriberCount returns the number of clients following a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
