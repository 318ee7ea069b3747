package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/infrastructure"
)

// writeProblem writes an RFC 7807 document for failures raised before a
// handler runs, where chi/render is not involved.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = GetReqID(r.Context())
	}

	problem := apierrors.NewProblemDetails(status, problemType, title, detail, r.URL.Path).
		WithExtension("trace_id", traceID)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(problem)
}
