package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidSortKey     = "INVALID_SORT_KEY"
	CodeInvalidTopN        = "INVALID_TOP_N"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeWebSocketUpgrade   = "WEBSOCKET_UPGRADE_FAILED"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest    = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed  = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidSortKey    = New(http.StatusBadRequest, CodeInvalidSortKey, "Unsupported sort column")
	ErrInvalidTopN       = New(http.StatusBadRequest, CodeInvalidTopN, "Unsupported top-N value")
	ErrUnsupportedFormat = New(http.StatusBadRequest, CodeUnsupportedFormat, "Unsupported export format")

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, CodeNotFound, "Resource not found")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer   = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrExportFailed     = New(http.StatusInternalServerError, CodeExportFailed, "Export generation failed")
	ErrWebSocketUpgrade = New(http.StatusInternalServerError, CodeWebSocketUpgrade, "WebSocket upgrade failed")

	// 503 Service Unavailable
	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, CodeDatasetUnavailable, "Dataset is not loaded")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// InvalidSortKey reports a sort column outside the allowed set.
func InvalidSortKey(got string, allowed []string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidSortKey,
		fmt.Sprintf("cannot sort by %q", got),
		map[string]interface{}{"allowed": allowed})
}

// InvalidTopN reports a top-N value outside the allowed set.
func InvalidTopN(got int, allowed []int) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidTopN,
		fmt.Sprintf("top %d is not offered", got),
		map[string]interface{}{"allowed": allowed})
}

// DatasetUnavailable reports that a dataset was not loaded at startup.
func DatasetUnavailable(name string) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, CodeDatasetUnavailable,
		fmt.Sprintf("%s dataset is not loaded", name), name)
}

// ExportError wraps a failure while generating a download.
func ExportError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeExportFailed, "Export generation failed", err.Error())
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}
