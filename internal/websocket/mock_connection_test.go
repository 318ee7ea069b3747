package websocket

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MockConnection is an in-memory Connection. Inbound frames are fed through
// Incoming; closing Incoming makes ReadMessage report a normal close.
type MockConnection struct {
	mu sync.Mutex

	Incoming        chan []byte
	WrittenMessages []MockMessage
	Closed          bool
	ReadLimit       int64
	PongHandler     func(string) error
}

// MockMessage represents a written frame
type MockMessage struct {
	Type int
	Data []byte
}

// NewMockConnection creates a new mock connection
func NewMockConnection() *MockConnection {
	return &MockConnection{Incoming: make(chan []byte, 8)}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return errors.New("connection closed")
	}
	m.WrittenMessages = append(m.WrittenMessages, MockMessage{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	data, ok := <-m.Incoming
	if !ok {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	return websocket.TextMessage, data, nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

func (m *MockConnection) RemoteAddr() string { return "127.0.0.1:8080" }

// Messages returns a copy of the frames written so far with the given type.
func (m *MockConnection) Messages(messageType int) []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockMessage
	for _, msg := range m.WrittenMessages {
		if msg.Type == messageType {
			out = append(out, msg)
		}
	}
	return out
}

// IsClosed reports whether Close was called
func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
