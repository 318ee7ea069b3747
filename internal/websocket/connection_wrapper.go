package websocket

import (
	"github.com/gorilla/websocket"
)

// ConnectionWrapper adapts a gorilla connection to Connection. Only
// RemoteAddr differs from the embedded methods.
type ConnectionWrapper struct {
	*websocket.Conn
}

// NewConnectionWrapper creates a new connection wrapper
func NewConnectionWrapper(conn *websocket.Conn) Connection {
	return &ConnectionWrapper{Conn: conn}
}

// RemoteAddr returns the remote network address as text
func (c *ConnectionWrapper) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
