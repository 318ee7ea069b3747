// Package app wires the dashboard server together: configuration, logging and
// OpenTelemetry, the datasets loaded at startup, the dashboard services, and
// the HTTP and WebSocket routes that expose them.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml, .env and PULSE_* variables
//	2. Initialize logging, tracing and the Prometheus meter
//	3. Load the skills sources and generate the synthetic patient cohort
//	4. Build the dashboard services over the read-only datasets
//	5. Mount /api, /ws and /metrics on the chi router
//
// A skills load failure is logged and leaves the healthcare dashboard
// serving; the skills routes then answer DATASET_UNAVAILABLE.
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
package app
