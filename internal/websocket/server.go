package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"pulseboard/internal/config"
	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/infrastructure"
)

// Server upgrades /ws requests into live filter sessions.
type Server struct {
	hub          *Hub
	processor    *Processor
	settings     config.WebSocketConfig
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewServer creates the upgrade handler. An empty allowedOrigins list, or one
// containing "*", accepts any origin.
func NewServer(hub *Hub, processor *Processor, settings config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Server{
		hub:       hub,
		processor: processor,
		settings:  settings,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  settings.ReadBufferSize,
			WriteBufferSize: settings.WriteBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "websocket.server"),
	}
}

// ServeHTTP handles GET /ws
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		s.errorHandler.HandleError(w, r, apierrors.New(http.StatusBadRequest,
			apierrors.CodeWebSocketUpgrade, "Expected a WebSocket upgrade request"))
		return
	}

	// The upgrader writes its own HTTP error response on failure.
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	session := NewSession(s.hub, NewConnectionWrapper(conn), s.processor, s.settings, traceID, s.logger)
	if !s.hub.Register(session) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	session.Greet()
	go session.WritePump()
	go session.ReadPump()
}

// SessionCount returns the number of open sessions
func (s *Server) SessionCount() int {
	return s.hub.SessionCount()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		// Same-origin pages are always accepted.
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
