// Package http implements the REST handlers of the dashboard server. Handlers
// stay thin: they decode query parameters into the v1 request contracts,
// validate them, call a dashboard service and render the result.
//
// Successful responses use the envelope
//
//	{"status": "success", "data": ...}
//
// and every failure is reported as an RFC 7807 problem document through
// errors.ErrorHandler. Export endpoints stream the artifact as an attachment
// and answer 204 when the download was not triggered.
package http
