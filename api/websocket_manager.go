package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// client pairs a connection with the lock that serializes its writes.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// WSConnectionManager tracks websocket clients that receive config change
// notifications.
type WSConnectionManager struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		clients: make(map[*websocket.Conn]*client),
	}
}

func (m *WSConnectionManager) Add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[conn] = &client{conn: conn}
}

func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, conn)
}

// Count returns the number of connected clients.
func (m *WSConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Broadcast sends message to every client. Clients whose write fails are
// dropped.
func (m *WSConnectionManager) Broadcast(message any) {
	m.mu.RLock()
	clients := make([]*client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			m.Remove(c.conn)
		}
	}
}

// WriteJSON writes to a single connection under its write lock.
func (m *WSConnectionManager) WriteJSON(conn *websocket.Conn, message any) error {
	m.mu.RLock()
	c, ok := m.clients[conn]
	m.mu.RUnlock()
	if !ok {
		c = &client{conn: conn}
	}
	return c.writeJSON(message)
}
