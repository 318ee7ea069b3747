package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/exporter"
	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
	api "pulseboard/pkg/contracts/api/v1"
)

// queryInt reads an optional integer parameter; absent means zero.
func queryInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.ErrValidation(name, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// queryBool reads an optional boolean parameter; absent means false.
func queryBool(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierrors.ErrValidation(name, fmt.Sprintf("%s must be true or false", name))
	}
	return b, nil
}

// queryList accepts both repeated parameters and comma-separated values.
// Blank entries are dropped so "?diagnosis=" means no restriction.
func queryList(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func decodeHealthcareFilter(q url.Values) api.HealthcareFilterRequest {
	return api.HealthcareFilterRequest{
		Diagnoses: queryList(q, "diagnosis"),
		Genders:   queryList(q, "gender"),
		Start:     strings.TrimSpace(q.Get("start")),
		End:       strings.TrimSpace(q.Get("end")),
	}
}

func decodeHealthcareDashboard(r *http.Request) (api.HealthcareDashboardRequest, error) {
	q := r.URL.Query()
	dark, err := queryBool(q, "dark")
	if err != nil {
		return api.HealthcareDashboardRequest{}, err
	}
	return api.HealthcareDashboardRequest{HealthcareFilterRequest: decodeHealthcareFilter(q), Dark: dark}, nil
}

func decodeHealthcareExport(r *http.Request) (api.HealthcareExportRequest, error) {
	q := r.URL.Query()
	trigger, err := queryInt(q, "trigger")
	if err != nil {
		return api.HealthcareExportRequest{}, err
	}
	return api.HealthcareExportRequest{
		HealthcareFilterRequest: decodeHealthcareFilter(q),
		Format:                  strings.ToLower(strings.TrimSpace(q.Get("format"))),
		Trigger:                 trigger,
	}, nil
}

// requested echoes the parameters of a call for error reporting.
type requested struct {
	SortBy  string
	TopN    int
	Options []int
}

// serviceError translates dashboard service sentinels into API errors.
func serviceError(err error, dashboard string, req requested) error {
	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		return apierrors.DatasetUnavailable(dashboard)
	case errors.Is(err, services.ErrInvalidSortKey):
		return apierrors.InvalidSortKey(req.SortBy, []string{domain.SortByEmployment, domain.SortByMedianWage})
	case errors.Is(err, services.ErrInvalidTopN):
		return apierrors.InvalidTopN(req.TopN, req.Options)
	case errors.Is(err, services.ErrInvalidFilter):
		return apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrExportFailed):
		return apierrors.ExportError(err)
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeUnsupportedFormat,
			"Unsupported export format", err.Error())
	}
	return err
}
