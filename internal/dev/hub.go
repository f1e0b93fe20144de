package dev

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType represents the type of hub message.
type MessageType string

const (
	// MessageRoutes carries a fresh manifest.
	MessageRoutes MessageType = "routes"

	// MessageError carries a failed rebuild.
	MessageError MessageType = "error"
)

// Message is sent to clients via WebSocket.
type Message struct {
	Type   MessageType     `json:"type"`
	Routes json.RawMessage `json:"routes,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Hub broadcasts manifest updates to WebSocket clients. A client that
// connects receives the latest message right away.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	latest   []byte
	upgrader websocket.Upgrader
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev only
			},
		},
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.writeMu.Lock()
	h.mu.Lock()
	h.clients[conn] = true
	latest := h.latest
	h.mu.Unlock()
	if latest != nil {
		err = conn.WriteMessage(websocket.TextMessage, latest)
	}
	h.writeMu.Unlock()

	if err == nil {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// NotifyRoutes sends a manifest to all clients.
func (h *Hub) NotifyRoutes(manifest []byte) {
	h.broadcast(Message{Type: MessageRoutes, Routes: manifest})
}

// NotifyError sends a rebuild error to all clients. errJSON is a JSON value
// describing the error.
func (h *Hub) NotifyError(errJSON []byte) {
	h.broadcast(Message{Type: MessageError, Error: errJSON})
}

// broadcast sends a message to all connected clients and remembers it for
// clients that connect later.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.Lock()
	h.latest = data
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
