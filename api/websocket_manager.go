package api

import (
	"sync"

	"github.com/gorilla/websocket"

	"themeplane/model"
)

// managedConn wraps a WebSocket connection with its own mutex so concurrent
// broadcasts never interleave writes on one connection.
type managedConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSConnectionManager tracks connected preview clients for broadcasting
// theme events.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*managedConn
}

// NewWSConnectionManager creates a new WebSocket connection manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[*websocket.Conn]*managedConn),
	}
}

// Add registers a connection with the manager.
func (m *WSConnectionManager) Add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = &managedConn{
		conn: conn,
	}
}

// Remove drops a connection from the manager.
func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

// Count returns the number of connected clients.
func (m *WSConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast sends an event to all connected clients. The connection set is
// copied under the read lock, then written outside it; a failed write drops
// that connection.
func (m *WSConnectionManager) Broadcast(event model.Event) {
	m.mu.RLock()
	conns := make([]*managedConn, 0, len(m.connections))
	for _, mc := range m.connections {
		conns = append(conns, mc)
	}
	m.mu.RUnlock()

	for _, mc := range conns {
		mc.mu.Lock()
		err := mc.conn.WriteJSON(event)
		mc.mu.Unlock()

		if err != nil {
			m.Remove(mc.conn)
		}
	}
}

// WriteJSON safely writes one message to a specific connection.
func (m *WSConnectionManager) WriteJSON(conn *websocket.Conn, v any) error {
	m.mu.RLock()
	mc, exists := m.connections[conn]
	m.mu.RUnlock()

	if !exists {
		return conn.WriteJSON(v)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.conn.WriteJSON(v)
}
