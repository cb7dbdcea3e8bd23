package dev

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType identifies a preview protocol message.
type MessageType string

const (
	MessageRender MessageType = "render"
	MessageError  MessageType = "error"
	MessageSet    MessageType = "set"
	MessageEvent  MessageType = "event"
)

// Message is exchanged with browsers over the preview WebSocket.
type Message struct {
	Type     MessageType `json:"type"`
	HTML     string      `json:"html,omitempty"`
	Version  int         `json:"version,omitempty"`
	Error    string      `json:"error,omitempty"`
	Name     string      `json:"name,omitempty"`
	Value    any         `json:"value,omitempty"`
	Selector string      `json:"selector,omitempty"`
	Event    string      `json:"event,omitempty"`
	Detail   any         `json:"detail,omitempty"`
}

const (
	writeTimeout = 5 * time.Second

	// sendQueue bounds the messages waiting for a client's writer. A
	// client that falls this far behind is dropped.
	sendQueue = 16
)

type client struct {
	conn *websocket.Conn
	out  chan Message
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		out:  make(chan Message, sendQueue),
		done: make(chan struct{}),
	}
}

// enqueue queues msg for the writer without blocking. It reports false
// when the queue is full or the client is closed.
func (c *client) enqueue(msg Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

// writeLoop sends queued messages until the client closes or a write
// fails.
func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans session renders out to connected browsers and applies their
// requests to the session.
type Hub struct {
	session  *Session
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	unsub   func()
}

// NewHub creates a hub for session and subscribes it to renders.
func NewHub(session *Session, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		session: session,
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
	h.unsub = session.Subscribe(func(html string, version int) {
		h.Broadcast(Message{Type: MessageRender, HTML: html, Version: version})
	})
	return h
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects. The current document is sent immediately.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("dev: websocket upgrade failed", "err", err)
		return
	}
	c := newClient(conn)

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	defer h.drop(c)

	if html, version := h.session.HTML(); version > 0 {
		c.enqueue(Message{Type: MessageRender, HTML: html, Version: version})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(Message{Type: MessageError, Error: "invalid message: " + err.Error()})
			continue
		}
		if err := h.handle(req.Context(), msg); err != nil {
			c.enqueue(Message{Type: MessageError, Error: err.Error()})
		}
	}
}

func (h *Hub) handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MessageSet:
		return h.session.Set(ctx, msg.Name, msg.Value)
	case MessageEvent:
		return h.session.Dispatch(ctx, msg.Selector, msg.Event, msg.Detail)
	default:
		return &unknownMessageError{typ: msg.Type}
	}
}

type unknownMessageError struct {
	typ MessageType
}

func (e *unknownMessageError) Error() string {
	return "unknown message type " + string(e.typ)
}

// NotifyError sends err to every client.
func (h *Hub) NotifyError(err error) {
	h.Broadcast(Message{Type: MessageError, Error: err.Error()})
}

// Broadcast queues msg for every connected client and returns without
// waiting for network writes. Clients whose queue is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if !c.enqueue(msg) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Debug("dev: dropping slow preview client")
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the session and disconnects all clients.
func (h *Hub) Close() {
	h.unsub()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}
