package websocket

import (
	"context"
	"log/slog"
	"sync"

	"pulseboard/internal/infrastructure"
)

// Hub tracks the open live filter sessions. Sessions never share state; the
// hub only counts them and closes them on shutdown.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	closed   bool

	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		sessions: make(map[*Session]struct{}),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "websocket.hub"),
	}
}

// Register adds a session. It reports false once the hub is shut down.
func (h *Hub) Register(s *Session) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.sessions[s] = struct{}{}
	count := len(h.sessions)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.LiveSessions.Add(context.Background(), 1)
	}
	h.logger.Info("live session opened",
		slog.String("session_id", s.ID()),
		slog.Int("total_sessions", count))
	return true
}

// Unregister removes a session; repeated calls are no-ops.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	count := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.LiveSessions.Add(context.Background(), -1)
	}
	h.logger.Info("live session closed",
		slog.String("session_id", s.ID()),
		slog.Int("total_sessions", count))
}

// SessionCount returns the number of open sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown refuses new sessions and closes the open ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	open := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}
	h.logger.Info("hub shut down", slog.Int("closed_sessions", len(open)))
}
