package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	apierrors "pulseboard/internal/errors"
	pbmiddleware "pulseboard/internal/middleware"
	"pulseboard/internal/services"
	"pulseboard/internal/shared/testutil"
)

type fixedProbe bool

func (p fixedProbe) Available() bool { return bool(p) }
func (p fixedProbe) Rows() int       { return 1 }

func TestHealthHandler_Endpoints(t *testing.T) {
	svc := services.NewHealthService("1.0.0", "", map[string]services.DatasetProbe{
		"healthcare": fixedProbe(true),
	}, nil, testLogger())
	h := NewHealthHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)

	tests := []struct {
		path     string
		contains string
	}{
		{"/api/health", `"status":"ok"`},
		{"/api/health/ready", `"status":"ready"`},
		{"/api/health/live", `"status":"alive"`},
		{"/api/version", `"version":"1.0.0"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	svc := services.NewHealthService("1.0.0", "", map[string]services.DatasetProbe{
		"skills": fixedProbe(false),
	}, nil, testLogger())
	h := NewHealthHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_ready"`)
}

func TestClientLogHandler_Handle(t *testing.T) {
	logger := testLogger()
	h := NewClientLogHandler(pbmiddleware.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"valid entry", `{"level":"error","message":"chart failed","dashboard":"healthcare","component":"trend"}`, http.StatusAccepted},
		{"default level", `{"message":"hello"}`, http.StatusAccepted},
		{"missing message", `{"level":"info"}`, http.StatusBadRequest},
		{"unknown dashboard", `{"message":"x","dashboard":"finance"}`, http.StatusBadRequest},
		{"malformed json", `{"message":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/client-logs", bytes.NewBufferString(tt.body))
			h.Handle(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestClientLogHandler_ForwardsToServerLog(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewClientLogHandler(pbmiddleware.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))

	body := `{"level":"error","message":"chart failed","dashboard":"skills","component":"salary-box"}`
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/client-logs", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	entry := testutil.AssertLogged(t, logs, slog.LevelError, "chart failed")
	assert.Equal(t, "client_log", entry.Attrs["handler"])
	assert.Equal(t, "skills", entry.Attrs["dashboard"])
	assert.Equal(t, "salary-box", entry.Attrs["client_component"])
}
