package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"pulseboard/internal/analytics"
	"pulseboard/internal/infrastructure"
	"pulseboard/pkg/contracts/domain"
)

// Instrumentation carries the tracer and metrics shared by the services.
// The zero value disables both.
type Instrumentation struct {
	Tracer  trace.Tracer
	Metrics *infrastructure.PipelineMetrics
}

// Pipeline stages.
const (
	stageFilter    = "filter"
	stageAggregate = "aggregate"
	stageExport    = "export"
)

type pipeline struct {
	dashboard string
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

func newPipeline(dashboard string, inst Instrumentation, logger *slog.Logger) pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	tracer := inst.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	return pipeline{
		dashboard: dashboard,
		tracer:    tracer,
		metrics:   inst.Metrics,
		logger:    infrastructure.WithComponent(logger, dashboard+"_service"),
	}
}

// stage runs fn inside a span and records its duration and output size.
func (p pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+p.dashboard+"."+name,
		trace.WithAttributes(attribute.String("dashboard", p.dashboard)))
	defer span.End()

	start := time.Now()
	rows, err := fn(ctx)
	duration := time.Since(start)

	infrastructure.RecordPipelineRun(ctx, p.metrics, p.dashboard, name, rows, duration, err)
	span.SetAttributes(attribute.Int("rows", rows))

	if err != nil {
		infrastructure.RecordError(ctx, err)
		p.logger.WarnContext(ctx, "pipeline stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()))
		return err
	}

	p.logger.DebugContext(ctx, "pipeline stage completed",
		slog.String("stage", name),
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func kpiCard(label string, k analytics.KPI) domain.KPICard {
	return domain.KPICard{Label: label, Value: k.Value, Display: k.Display, Empty: k.Empty}
}
