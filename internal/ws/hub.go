package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// sendBuffer is the number of frames queued per client before it is dropped.
const sendBuffer = 256

// Message is the envelope written to notification sockets.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Client is one notification socket of a user.
type Client struct {
	conn   *websocket.Conn
	userID int64
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a client for userID. conn may be nil in tests.
func NewClient(conn *websocket.Conn, userID int64) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
	}
}

// Send queues a frame. A client whose buffer is full is closed.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.closeLocked()
	}
}

// Close closes the send channel; the write pump then closes the socket.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// UserID returns the user the socket belongs to.
func (c *Client) UserID() int64 {
	return c.userID
}

// SendChan returns the send channel for the client.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Hub tracks notification sockets by user.
type Hub struct {
	logger  zerolog.Logger
	mu      sync.RWMutex
	clients map[int64]map[*Client]bool
}

// NewHub creates an empty Hub. logger may be nil.
func NewHub(logger *zerolog.Logger) *Hub {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "ws_hub").Logger()
	}
	return &Hub{
		logger:  l,
		clients: make(map[int64]map[*Client]bool),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[client.userID] = set
	}
	set[client] = true
}

// Unregister removes a client from the hub and closes it.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.userID)
		}
	}
	h.mu.Unlock()

	client.Close()
}

// Publish sends an envelope to every socket of the given users. It never
// blocks.
func (h *Hub) Publish(userIDs []int64, eventType string, data any) {
	frame, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("type", eventType).Msg("failed to encode notification")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, id := range userIDs {
		for client := range h.clients[id] {
			client.Send(frame)
			delivered++
		}
	}
	h.logger.Debug().Str("type", eventType).Int("sockets", delivered).Msg("notification published")
}

// ClientCount returns the number of sockets open for userID.
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close closes every client.
func (h *Hub) Close() {
	h.mu.Lock()
	var clients []*Client
	for _, set := range h.clients {
		for client := range set {
			clients = append(clients, client)
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
