package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pulseboard/internal/errors"
	pbmiddleware "pulseboard/internal/middleware"
	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
)

// HealthcareHandler handles the healthcare cost and outcome endpoints
type HealthcareHandler struct {
	service      HealthcareService
	validator    *pbmiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHealthcareHandler creates a new healthcare handler
func NewHealthcareHandler(service HealthcareService, validator *pbmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HealthcareHandler {
	return &HealthcareHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "healthcare_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the healthcare routes
func (h *HealthcareHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/options", h.GetOptions)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/export", h.Export)

	return r
}

// GetOptions handles GET /api/healthcare/options
func (h *HealthcareHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardHealthcare, requested{}))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// GetDashboard handles GET /api/healthcare/dashboard
func (h *HealthcareHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := decodeHealthcareDashboard(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filter, err := services.ParseHealthcareFilter(req.HealthcareFilterRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardHealthcare, requested{}))
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), filter, req.Dark)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardHealthcare, requested{}))
		return
	}

	h.logger.DebugContext(r.Context(), "healthcare dashboard computed",
		slog.Int("diagnoses", len(filter.Diagnoses)),
		slog.Int("genders", len(filter.Genders)),
		slog.String("patients", dashboard.KPIs.TotalPatients.Display))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dashboard,
	})
}

// Export handles GET /api/healthcare/export
func (h *HealthcareHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, err := decodeHealthcareExport(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filter, err := services.ParseHealthcareFilter(req.HealthcareFilterRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardHealthcare, requested{}))
		return
	}

	artifact, err := h.service.Export(r.Context(), filter, req.Format, req.Trigger)
	if errors.Is(err, services.ErrExportNotTriggered) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardHealthcare, requested{}))
		return
	}

	writeArtifact(w, r, h.logger, artifact)
}
