package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"pulseboard/internal/exporter"
)

// writeArtifact streams an export as a file attachment.
func writeArtifact(w http.ResponseWriter, r *http.Request, logger *slog.Logger, artifact *exporter.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("X-Export-Rows", strconv.Itoa(artifact.Rows))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(artifact.Data); err != nil {
		logger.WarnContext(r.Context(), "failed to write export",
			slog.String("filename", artifact.Filename),
			slog.String("error", err.Error()))
		return
	}

	logger.InfoContext(r.Context(), "export served",
		slog.String("filename", artifact.Filename),
		slog.Int("rows", artifact.Rows),
		slog.Int("bytes", len(artifact.Data)))
}
