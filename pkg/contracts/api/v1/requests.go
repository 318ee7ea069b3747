// Package api contains the request contracts of the v1 HTTP and live filter API.
package api

// OccupationsRequest selects the sort column of the occupations view.
type OccupationsRequest struct {
	SortBy string `json:"sort_by" query:"sort_by" validate:"omitempty,oneof=TOT_EMP A_MEDIAN"`
}

// OccupationsExportRequest downloads the occupations table. Trigger counts
// button presses; zero means nothing was requested.
type OccupationsExportRequest struct {
	SortBy  string `json:"sort_by" query:"sort_by" validate:"omitempty,oneof=TOT_EMP A_MEDIAN"`
	Trigger int    `json:"trigger" query:"trigger" validate:"gte=0"`
}

// TopNRequest selects how many rows a ranked view returns.
type TopNRequest struct {
	TopN int `json:"top_n" query:"top_n" validate:"gte=0"`
}

// HealthcareFilterRequest is the healthcare Filter Specification as sent by
// clients. Empty lists and dates mean no restriction.
type HealthcareFilterRequest struct {
	Diagnoses []string `json:"diagnosis" query:"diagnosis" validate:"dive,required"`
	Genders   []string `json:"gender" query:"gender" validate:"dive,required"`
	Start     string   `json:"start" query:"start" validate:"omitempty,isodate"`
	End       string   `json:"end" query:"end" validate:"omitempty,isodate"`
}

// HealthcareDashboardRequest adds the display mode to the filter.
type HealthcareDashboardRequest struct {
	HealthcareFilterRequest
	Dark bool `json:"dark" query:"dark"`
}

// HealthcareExportRequest downloads the filtered patient rows.
type HealthcareExportRequest struct {
	HealthcareFilterRequest
	Format  string `json:"format" query:"format" validate:"omitempty,oneof=xlsx csv excel"`
	Trigger int    `json:"trigger" query:"trigger" validate:"gte=0"`
}
