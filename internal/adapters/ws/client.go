package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket connection owned by an authenticated user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	// send is never closed: broadcasters may still hold a reference to a
	// client between its disconnect and its removal from the hub's rooms,
	// and a send racing a close would panic. Shutdown is signalled through
	// done instead.
	send  chan []byte
	done  chan struct{}
	rooms map[string]struct{}

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. Call Run to start pumping.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}
}

// UserID returns the owning user's ID.
func (c *Client) UserID() string { return c.userID }

// Run registers the client and blocks until the connection drops.
func (c *Client) Run() {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	go c.writePump()
	c.readPump()
}

// trySend enqueues a frame without blocking. Returns false when the
// client's buffer is full. Frames offered to a client already shutting
// down are silently dropped.
func (c *Client) trySend(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close marks the client for teardown. Safe to call from any goroutine,
// any number of times, concurrently with trySend.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// command is the inbound client frame. Clients publish chat messages
// through the HTTP API; the socket only carries room subscription
// commands.
type command struct {
	Event string `json:"event"`
	Room  string `json:"room"`
}

// readPump processes joinRoom/leaveRoom commands and detects disconnects.
// Unknown frames are ignored.
func (c *Client) readPump() {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			c.close()
			return
		}
		var cmd command
		if err := json.Unmarshal(frame, &cmd); err != nil || cmd.Room == "" {
			continue
		}
		switch cmd.Event {
		case "joinRoom":
			c.hub.Subscribe(c, cmd.Room)
		case "leaveRoom":
			c.hub.Leave(c, cmd.Room)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
