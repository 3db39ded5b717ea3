// Package realtime fans post mutation events out to connected websocket
// clients. Delivery is fire-and-forget: at most once per connected client,
// no queueing, no replay for clients that connect late.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub is the registry of connected clients. Clients are added on connect and
// removed on disconnect; nothing else mutates the set.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// Broadcast sends evt to every connected client. A client whose send buffer
// is full misses the event; slow consumers never block the mutation path.
func (h *Hub) Broadcast(evt ChangeEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("event", string(evt.Type)).Msg("Failed to encode change event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
