package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord represents a captured log record for testing
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recorder is shared by a CaptureHandler and every handler derived from it.
type recorder struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records every log record, including attributes added
// through Logger.With, so component loggers can be asserted on.
type CaptureHandler struct {
	rec   *recorder
	attrs []slog.Attr
	group string
}

// NewTestLogger creates a logger that records into the returned handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	t.Helper()
	h := &CaptureHandler{rec: &recorder{}}
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	h.rec.records = append(h.rec.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &CaptureHandler{rec: h.rec, attrs: merged, group: h.group}
}

// WithGroup implements slog.Handler
func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if h.group != "" {
		name = h.group + "." + name
	}
	return &CaptureHandler{rec: h.rec, attrs: h.attrs, group: name}
}

// Records returns a copy of the captured records
func (h *CaptureHandler) Records() []LogRecord {
	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	return append([]LogRecord(nil), h.rec.records...)
}

// Find returns the first record whose message contains message
func (h *CaptureHandler) Find(message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogged fails the test unless a record at level contains message.
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, message string) LogRecord {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r
		}
	}
	t.Errorf("expected %s log containing %q", level, message)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
	return LogRecord{}
}
