package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Defaults(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "default trace exporter is none")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "none"})
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPipelineRun(context.Background(), metrics, "healthcare", "dashboard", 10, time.Millisecond, nil)
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, quietLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "statsd"}, quietLogger())
	assert.Error(t, err)
}

func TestPrometheusEndpoint_ExposesPipelineMetrics(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordPipelineRun(ctx, metrics, "skills", "occupations", 15, 2*time.Millisecond, nil)
	RecordPipelineRun(ctx, metrics, "skills", "occupations", 0, time.Millisecond, errors.New("boom"))
	RecordExport(ctx, metrics, "healthcare", "xlsx", 2048)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pipeline_runs_total")
	assert.Contains(t, string(body), "exports_total")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPipelineRun(context.Background(), nil, "x", "y", 1, time.Second, nil)
		RecordExport(context.Background(), nil, "x", "csv", 1)
		RecordError(context.Background(), errors.New("no span"))
	})
}
