package ws

// Package ws pushes chat events to connected browser clients over
// websockets. Delivery is best-effort: slow consumers are disconnected
// rather than allowed to exert backpressure on the chat core.

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/wavechat/wavechat-api/internal/ports"
)

// Envelope is the wire frame for every pushed event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected clients and their room subscriptions.
type Hub struct {
	logger *slog.Logger

	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	byUser map[string]map[*Client]struct{}
}

var _ ports.Broadcaster = (*Hub)(nil)

// NewHub builds an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*Client]struct{}),
		byUser: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connected client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.byUser[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.byUser[c.userID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a client and all its subscriptions.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	if set, ok := h.byUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
}

// Subscribe adds the client to the given rooms.
func (h *Hub) Subscribe(c *Client, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		set, ok := h.rooms[room]
		if !ok {
			set = make(map[*Client]struct{})
			h.rooms[room] = set
		}
		set[c] = struct{}{}
		c.rooms[room] = struct{}{}
	}
}

// Leave removes the client from a room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

// SubscribeUser adds every live connection of a user to the given rooms.
// Used when a user gains membership in a chat while already connected.
func (h *Hub) SubscribeUser(userID string, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.byUser[userID] {
		for _, room := range rooms {
			set, ok := h.rooms[room]
			if !ok {
				set = make(map[*Client]struct{})
				h.rooms[room] = set
			}
			set[c] = struct{}{}
			c.rooms[room] = struct{}{}
		}
	}
}

// BroadcastToRoom fans an event out to every client in the room.
func (h *Hub) BroadcastToRoom(roomID, event string, payload any) {
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("ws broadcast marshal failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(frame) {
			h.logger.Warn("ws client send buffer full, dropping connection", "room", roomID)
			c.close()
		}
	}
}

// RoomSize reports the number of clients in the room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// leaveLocked removes c from a room; caller holds h.mu.
func (h *Hub) leaveLocked(c *Client, room string) {
	set, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, room)
	}
	delete(c.rooms, room)
}
