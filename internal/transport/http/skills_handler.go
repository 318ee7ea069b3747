package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "pulseboard/internal/errors"
	pbmiddleware "pulseboard/internal/middleware"
	"pulseboard/internal/services"
	api "pulseboard/pkg/contracts/api/v1"
	"pulseboard/pkg/contracts/domain"
)

// SkillsHandler handles the Digital Skills Pulse endpoints
type SkillsHandler struct {
	service      SkillsService
	validator    *pbmiddleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSkillsHandler creates a new skills handler
func NewSkillsHandler(service SkillsService, validator *pbmiddleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SkillsHandler {
	return &SkillsHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "skills_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the skills routes
func (h *SkillsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/overview", h.GetOverview)
	r.Get("/occupations", h.GetOccupations)
	r.Get("/occupations/export", h.ExportOccupations)
	r.Get("/countries", h.GetCountries)
	r.Get("/onet", h.GetDigitalOccupations)

	return r
}

// GetOverview handles GET /api/skills/overview
func (h *SkillsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardSkills, requested{}))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   overview,
	})
}

// GetOccupations handles GET /api/skills/occupations?sort_by=
func (h *SkillsHandler) GetOccupations(w http.ResponseWriter, r *http.Request) {
	req := api.OccupationsRequest{SortBy: strings.TrimSpace(r.URL.Query().Get("sort_by"))}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Occupations(r.Context(), req.SortBy)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardSkills, requested{SortBy: req.SortBy}))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Rows),
	})
}

// ExportOccupations handles GET /api/skills/occupations/export?sort_by=&trigger=
func (h *SkillsHandler) ExportOccupations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trigger, err := queryInt(q, "trigger")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	req := api.OccupationsExportRequest{SortBy: strings.TrimSpace(q.Get("sort_by")), Trigger: trigger}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	artifact, err := h.service.ExportOccupations(r.Context(), req.SortBy, req.Trigger)
	if errors.Is(err, services.ErrExportNotTriggered) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "occupations export failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardSkills, requested{SortBy: req.SortBy}))
		return
	}

	writeArtifact(w, r, h.logger, artifact)
}

// GetCountries handles GET /api/skills/countries?top_n=
func (h *SkillsHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTopN(w, r)
	if !ok {
		return
	}

	view, err := h.service.Countries(r.Context(), req.TopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardSkills,
			requested{TopN: req.TopN, Options: h.service.CountryOptions()}))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Table),
	})
}

// GetDigitalOccupations handles GET /api/skills/onet?top_n=
func (h *SkillsHandler) GetDigitalOccupations(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTopN(w, r)
	if !ok {
		return
	}

	view, err := h.service.DigitalOccupations(r.Context(), req.TopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, domain.DashboardSkills,
			requested{TopN: req.TopN, Options: h.service.ONETOptions()}))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Rows),
	})
}

func (h *SkillsHandler) decodeTopN(w http.ResponseWriter, r *http.Request) (api.TopNRequest, bool) {
	topN, err := queryInt(r.URL.Query(), "top_n")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return api.TopNRequest{}, false
	}
	req := api.TopNRequest{TopN: topN}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return api.TopNRequest{}, false
	}
	return req, true
}
