package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// DatasetProbe reports whether a dashboard's data is loaded.
type DatasetProbe interface {
	Available() bool
	Rows() int
}

// SessionCounter reports the number of open live filter sessions.
type SessionCounter interface {
	SessionCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	datasets  map[string]DatasetProbe
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Clients int    `json:"clients,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. datasets maps a dashboard name
// to its probe; sessions may be nil.
func NewHealthService(version, buildTime string, datasets map[string]DatasetProbe, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.Int("datasets", len(datasets)))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		datasets:  datasets,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck reports every dataset and the live session channel. The
// server is ready when at least one dashboard has data.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	anyReady := false
	for name, probe := range hs.datasets {
		sh := checkDataset(probe)
		if sh.Status == "ready" {
			anyReady = true
		}
		status.Services[name] = sh
	}
	status.Services["websocket"] = hs.checkWebSocketHealth()

	if !anyReady {
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "readiness check failed: no dataset loaded")
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func checkDataset(probe DatasetProbe) ServiceHealth {
	if probe == nil || !probe.Available() {
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
	}
	return ServiceHealth{Status: "ready", Rows: probe.Rows()}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	sh := ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).String(),
	}
	if hs.sessions != nil {
		sh.Clients = hs.sessions.SessionCount()
	}
	return sh
}
