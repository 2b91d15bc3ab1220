package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Envelope is the wire frame pushed to WebSocket clients: the topic the
// payload was published on plus the payload itself.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Hub is the in-process Gateway: it tracks WebSocket clients and the
// topics each one subscribed to, and fans published payloads out to
// them. A slow client loses frames rather than blocking the hub.
type Hub struct {
	log *slog.Logger

	mu            sync.RWMutex
	subscriptions map[string]map[*Client]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:           log,
		subscriptions: make(map[string]map[*Client]struct{}),
	}
}

// Publish marshals the payload once and queues it on every subscriber
// of the topic. It never blocks and never fails the caller; clients
// with a full send queue are dropped from the topic.
func (h *Hub) Publish(_ context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for %s: %w", topic, err)
	}
	frame, err := json.Marshal(Envelope{Topic: topic, Payload: body})
	if err != nil {
		return fmt.Errorf("encoding envelope for %s: %w", topic, err)
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subscriptions[topic]))
	for client := range h.subscriptions[topic] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.enqueue(frame) {
			h.log.Warn(fmt.Sprintf("Client %s too slow, closing", client.sessionID))
			h.Detach(client)
			client.Close()
		}
	}
	return nil
}

// Subscribe adds the client to a topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscriptions[topic]; !ok {
		h.subscriptions[topic] = make(map[*Client]struct{})
	}
	h.subscriptions[topic][client] = struct{}{}
}

// Detach removes the client from every topic. Empty topic sets are
// pruned so long-gone rooms do not accumulate.
func (h *Hub) Detach(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, clients := range h.subscriptions {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, topic)
		}
	}
}

// SubscriberCount reports how many clients listen on a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[topic])
}

// Client is one WebSocket connection with its outbound queue.
type Client struct {
	sessionID string
	conn      *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(sessionID string, conn *websocket.Conn, queueSize int) *Client {
	return &Client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, queueSize),
	}
}

func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// enqueue queues one frame, reporting false when the client is closed
// or its queue is full. The mutex orders it against Close: a publisher
// holding a pre-Detach snapshot must never send on a closed channel.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the connection and keeps the
// connection alive with pings. Run it in its own goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes inbound frames until the peer disconnects; the chat
// core receives client actions over HTTP, so inbound WebSocket traffic
// is keep-alive only. It returns when the connection drops.
func (c *Client) ReadPump() {
	defer func() { _ = c.conn.Close() }()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
