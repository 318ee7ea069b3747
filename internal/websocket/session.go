package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pulseboard/internal/config"
	"pulseboard/internal/infrastructure"
	"pulseboard/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound replies buffered per session
	sendBuffer = 16
)

// Session is one live filter connection. Requests are evaluated one at a
// time, in arrival order, on the read goroutine.
type Session struct {
	id          string
	traceID     string
	conn        Connection
	hub         *Hub
	processor   *Processor
	settings    config.WebSocketConfig
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
	logger      *slog.Logger

	messagesReceived int64
	messagesSent     int64
}

// NewSession creates a session over conn with a fresh UUID.
func NewSession(hub *Hub, conn Connection, processor *Processor, settings config.WebSocketConfig, traceID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if settings.PongWait <= 0 {
		settings.PongWait = 60 * time.Second
	}
	if settings.PingPeriod <= 0 || settings.PingPeriod >= settings.PongWait {
		settings.PingPeriod = settings.PongWait * 9 / 10
	}

	id := uuid.New().String()
	return &Session{
		id:          id,
		traceID:     traceID,
		conn:        conn,
		hub:         hub,
		processor:   processor,
		settings:    settings,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
		),
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Close ends the session; safe to call more than once. The write pump sends
// the close frame and releases the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) context() context.Context {
	ctx := context.Background()
	if s.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, s.traceID)
	}
	return ctx
}

// Greet queues the connect message carrying the session id.
func (s *Session) Greet() {
	s.enqueue(events.NewMessage(events.MessageTypeConnect, "", s.id, map[string]interface{}{
		"status": "connected",
	}))
}

// ReadPump reads filter requests until the peer goes away. Each request is
// processed to completion before the next one is read.
func (s *Session) ReadPump() {
	defer func() {
		s.logger.InfoContext(s.context(), "live session read pump stopped",
			slog.Duration("connection_duration", time.Since(s.connectedAt)),
			slog.Int64("messages_received", s.messagesReceived))
		s.hub.Unregister(s)
		s.Close()
	}()

	if s.settings.MaxMessageSize > 0 {
		s.conn.SetReadLimit(s.settings.MaxMessageSize)
	}
	s.conn.SetReadDeadline(time.Now().Add(s.settings.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.settings.PongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.WarnContext(s.context(), "unexpected live session close",
					slog.String("error", err.Error()))
			}
			return
		}
		s.messagesReceived++

		ctx := s.context()
		reply := s.processor.Process(ctx, raw, s.id)
		reply.TraceID = s.traceID
		if reply.Type == events.MessageTypeError {
			s.logger.DebugContext(ctx, "filter request rejected", slog.Any("error", reply.Data))
		}
		if !s.enqueue(reply) {
			return
		}
	}
}

// enqueue hands a reply to the write pump. It reports false when the session
// is closed or the peer is not draining replies.
func (s *Session) enqueue(msg events.WebSocketMessage) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.ErrorContext(s.context(), "failed to encode reply", slog.String("error", err.Error()))
		return true
	}

	select {
	case s.send <- payload:
		return true
	case <-s.done:
		return false
	default:
		s.logger.WarnContext(s.context(), "live session send buffer full, closing")
		s.Close()
		return false
	}
}

// WritePump writes queued replies and keeps the connection alive with pings.
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
		s.conn.Close()
		s.logger.DebugContext(s.context(), "live session write pump stopped",
			slog.Int64("messages_sent", s.messagesSent))
	}()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.WarnContext(s.context(), "failed to write reply", slog.String("error", err.Error()))
				return
			}
			s.messagesSent++

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(s.context(), "failed to send ping", slog.String("error", err.Error()))
				return
			}
		}
	}
}
