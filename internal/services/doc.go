// Package services implements the dashboard pipelines. Each operation builds a
// Filter Specification from its inputs, narrows an immutable base dataset,
// aggregates the remainder and formats the KPIs, returning the chart-ready
// contracts from pkg/contracts/domain.
//
// Services never mutate the base datasets, so one instance is shared by every
// HTTP request, live filter session and CLI run without locking.
//
// Every pipeline stage opens a span named pipeline.<dashboard>.<stage> and
// records the pipeline metrics defined in internal/infrastructure.
//
// Errors are sentinel values wrapped with %w:
//
//	ErrInvalidSortKey      unsupported sort column
//	ErrInvalidTopN         top-N outside the configured options
//	ErrInvalidFilter       malformed filter dates
//	ErrExportNotTriggered  export requested with a zero trigger
//	ErrDatasetUnavailable  dashboard sources were not loaded
package services
