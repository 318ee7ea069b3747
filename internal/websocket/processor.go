package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/middleware"
	"pulseboard/internal/services"
	api "pulseboard/pkg/contracts/api/v1"
	"pulseboard/pkg/contracts/domain"
	"pulseboard/pkg/contracts/events"
)

// Processor evaluates one filter request against the dashboard services.
// Either service may be nil when its dashboard is disabled.
type Processor struct {
	skills     SkillsService
	healthcare HealthcareService
	validator  *middleware.Validator
}

// NewProcessor creates a filter request processor
func NewProcessor(skills SkillsService, healthcare HealthcareService, validator *middleware.Validator) *Processor {
	if validator == nil {
		validator = middleware.NewValidator()
	}
	return &Processor{skills: skills, healthcare: healthcare, validator: validator}
}

// Process decodes raw, runs the pipeline and returns the reply. Failures are
// returned as error messages; the session stays open.
func (p *Processor) Process(ctx context.Context, raw []byte, sessionID string) events.WebSocketMessage {
	var req events.FilterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorMessage("", sessionID, apierrors.InvalidRequestWithError(err))
	}
	if req.Type != "" && req.Type != events.MessageTypeFilterRequest {
		return errorMessage(req.ID, sessionID, apierrors.ErrValidation("type",
			fmt.Sprintf("type must be %s", events.MessageTypeFilterRequest)))
	}
	if err := p.validator.ValidateStruct(req); err != nil {
		return errorMessage(req.ID, sessionID, err)
	}

	var (
		data interface{}
		err  error
	)
	switch req.Dashboard {
	case domain.DashboardHealthcare:
		data, err = p.healthcareUpdate(ctx, req.Healthcare)
	case domain.DashboardSkills:
		data, err = p.skillsUpdate(ctx, req.Skills)
	}
	if err != nil {
		return errorMessage(req.ID, sessionID, err)
	}

	msg := events.NewMessage(events.MessageTypeDashboardUpdate, req.ID, sessionID, data)
	msg.Dashboard = req.Dashboard
	return msg
}

func (p *Processor) healthcareUpdate(ctx context.Context, req *api.HealthcareDashboardRequest) (interface{}, error) {
	if p.healthcare == nil {
		return nil, apierrors.DatasetUnavailable(domain.DashboardHealthcare)
	}
	if req == nil {
		req = &api.HealthcareDashboardRequest{}
	}
	filter, err := services.ParseHealthcareFilter(req.HealthcareFilterRequest)
	if err != nil {
		return nil, apierrors.InvalidRequestWithError(err)
	}
	dashboard, err := p.healthcare.Dashboard(ctx, filter, req.Dark)
	if err != nil {
		return nil, translate(err, domain.DashboardHealthcare, events.SkillsQuery{}, nil)
	}
	return dashboard, nil
}

func (p *Processor) skillsUpdate(ctx context.Context, q *events.SkillsQuery) (interface{}, error) {
	if p.skills == nil {
		return nil, apierrors.DatasetUnavailable(domain.DashboardSkills)
	}
	if q == nil {
		return nil, apierrors.ErrValidation("skills", "skills is required")
	}

	var (
		data    interface{}
		err     error
		options []int
	)
	switch q.View {
	case events.SkillsViewOverview:
		data, err = p.skills.Overview(ctx)
	case events.SkillsViewOccupations:
		data, err = p.skills.Occupations(ctx, q.SortBy)
	case events.SkillsViewCountries:
		options = p.skills.CountryOptions()
		data, err = p.skills.Countries(ctx, q.TopN)
	case events.SkillsViewONET:
		options = p.skills.ONETOptions()
		data, err = p.skills.DigitalOccupations(ctx, q.TopN)
	}
	if err != nil {
		return nil, translate(err, domain.DashboardSkills, *q, options)
	}
	return data, nil
}

// translate maps service sentinels to API errors.
func translate(err error, dashboard string, q events.SkillsQuery, options []int) error {
	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		return apierrors.DatasetUnavailable(dashboard)
	case errors.Is(err, services.ErrInvalidTopN):
		return apierrors.InvalidTopN(q.TopN, options)
	case errors.Is(err, services.ErrInvalidSortKey):
		return apierrors.InvalidSortKey(q.SortBy, []string{domain.SortByEmployment, domain.SortByMedianWage})
	case errors.Is(err, services.ErrInvalidFilter):
		return apierrors.InvalidRequestWithError(err)
	}
	return err
}

func errorMessage(id, sessionID string, err error) events.WebSocketMessage {
	data := events.ErrorData{Code: apierrors.CodeInternal, Message: "An unexpected error occurred"}

	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		data.Code = apiErr.ErrorCode
		data.Message = apiErr.Message
		data.Details = apiErr.Details
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		data.Message = "Request timed out"
	}

	return events.NewMessage(events.MessageTypeError, id, sessionID, data)
}
