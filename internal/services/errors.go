package services

import "errors"

// Dashboard service errors
var (
	// Request errors
	ErrInvalidSortKey = errors.New("invalid sort key")
	ErrInvalidTopN    = errors.New("invalid top n")
	ErrInvalidFilter  = errors.New("invalid filter")

	// ErrExportNotTriggered means the download control has not been pressed
	// yet; nothing is serialized.
	ErrExportNotTriggered = errors.New("export not triggered")

	// ErrExportFailed wraps a serialization failure of a download.
	ErrExportFailed = errors.New("export failed")

	// ErrDatasetUnavailable means a dashboard's sources were not loaded.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)
