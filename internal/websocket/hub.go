package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroviz-server/internal/pkg/logger"
)

// Hub fans session events out to connected operator consoles. Unlike the
// state push stream, this feed carries discrete events (result saved,
// client connect/disconnect), not the synchronized AppState.
type Hub struct {
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("hub", "console connected", map[string]interface{}{"client_id": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
				h.logger.Info("hub", "console disconnected", map[string]interface{}{"client_id": client.ID})
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected console. Implements the
// notifier's delivery contract.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}, occurredAt time.Time) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":        eventType,
		"data":        data,
		"occurred_at": occurredAt.UnixMilli(),
	})
	if err != nil {
		h.logger.Error("hub", "failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("hub", "console send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
		h.unregister <- client
	}
}
