package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// PipelineMetrics holds all application-specific metrics
type PipelineMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	PipelineRunsTotal metric.Int64Counter
	PipelineDuration  metric.Float64Histogram
	PipelineRows      metric.Int64Histogram

	// Export metrics
	ExportsTotal     metric.Int64Counter
	ExportBytesTotal metric.Int64Counter

	// WebSocket metrics
	LiveSessions metric.Int64UpDownCounter
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(MeterName)
	}

	var (
		m   PipelineMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.PipelineRunsTotal, err = meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of dashboard pipeline invocations"),
	); err != nil {
		return nil, err
	}

	if m.PipelineDuration, err = meter.Float64Histogram(
		"pipeline_duration_seconds",
		metric.WithDescription("Dashboard pipeline duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.PipelineRows, err = meter.Int64Histogram(
		"pipeline_rows_output",
		metric.WithDescription("Rows left after filtering per pipeline invocation"),
	); err != nil {
		return nil, err
	}

	if m.ExportsTotal, err = meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of file exports"),
	); err != nil {
		return nil, err
	}

	if m.ExportBytesTotal, err = meter.Int64Counter(
		"export_bytes_total",
		metric.WithDescription("Total bytes of exported files"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.LiveSessions, err = meter.Int64UpDownCounter(
		"live_sessions",
		metric.WithDescription("Number of open live filter sessions"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordPipelineRun records one dashboard pipeline invocation.
func RecordPipelineRun(ctx context.Context, m *PipelineMetrics, dashboard, stage string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("dashboard", dashboard),
		attribute.String("stage", stage),
		attribute.String("status", status),
	)

	m.PipelineRunsTotal.Add(ctx, 1, attrs)
	m.PipelineDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.PipelineRows.Record(ctx, int64(rows), attrs)
	}
}

// RecordExport records one generated export file.
func RecordExport(ctx context.Context, m *PipelineMetrics, dashboard, format string, size int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("dashboard", dashboard),
		attribute.String("format", format),
	)
	m.ExportsTotal.Add(ctx, 1, attrs)
	m.ExportBytesTotal.Add(ctx, int64(size), attrs)
}
