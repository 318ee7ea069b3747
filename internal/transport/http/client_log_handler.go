package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "pulseboard/internal/errors"
	pbmiddleware "pulseboard/internal/middleware"
)

// maxClientLogBytes bounds the body of a client log entry.
const maxClientLogBytes = 16 << 10

// ClientLogHandler forwards dashboard front-end diagnostics into the server log
type ClientLogHandler struct {
	validator    *pbmiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validator *pbmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClientLogHandler {
	return &ClientLogHandler{
		validator:    validator,
		logger:       logger.With(slog.String("handler", "client_log")),
		errorHandler: errorHandler,
	}
}

// LogRequest represents a client log entry, e.g. a chart that failed to render
type LogRequest struct {
	Level     string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message   string                 `json:"message" validate:"required,max=1024"`
	Dashboard string                 `json:"dashboard" validate:"omitempty,oneof=skills healthcare"`
	Component string                 `json:"component,omitempty" validate:"max=128"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handle processes POST /api/client-logs
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxClientLogBytes)

	var req LogRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	attrs := []slog.Attr{
		slog.String("dashboard", req.Dashboard),
		slog.String("client_component", req.Component),
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	h.logger.LogAttrs(r.Context(), clientLevel(req.Level), req.Message, attrs...)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{"status": "success"})
}

func clientLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
