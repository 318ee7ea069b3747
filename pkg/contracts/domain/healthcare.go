package domain

// HealthcareOptions feeds the filter controls.
type HealthcareOptions struct {
	Diagnoses []string `json:"diagnoses"`
	Genders   []string `json:"genders"`
	Outcomes  []string `json:"outcomes"`
	MinDate   string   `json:"min_date,omitempty"`
	MaxDate   string   `json:"max_date,omitempty"`
}

// AppliedFilter echoes the filter a dashboard was computed with, after
// defaults were filled in.
type AppliedFilter struct {
	Diagnoses []string `json:"diagnoses"`
	Genders   []string `json:"genders"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
}

// HealthcareKPIs are the four headline cards.
type HealthcareKPIs struct {
	AverageCost     KPICard `json:"average_cost"`
	RecoveryRate    KPICard `json:"recovery_rate"`
	ReadmissionRate KPICard `json:"readmission_rate"`
	TotalPatients   KPICard `json:"total_patients"`
}

// CostCell is the mean cost of one diagnosis and gender pair.
type CostCell struct {
	Diagnosis   string  `json:"diagnosis"`
	Gender      string  `json:"gender"`
	AverageCost float64 `json:"average_cost"`
}

// OutcomeSlice is one slice of the outcome breakdown. Pull offsets the slice
// from the centre of the chart.
type OutcomeSlice struct {
	Outcome string  `json:"outcome"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
	Pull    float64 `json:"pull"`
}

// DiagnosisOutcome is one cell of the diagnosis by outcome summary.
type DiagnosisOutcome struct {
	Diagnosis   string  `json:"diagnosis"`
	Outcome     string  `json:"outcome"`
	Count       int     `json:"count"`
	AverageCost float64 `json:"average_cost"`
}

// TrendPoint is the mean cost of one admission month (YYYY-MM).
type TrendPoint struct {
	Month       string  `json:"month"`
	AverageCost float64 `json:"average_cost"`
}

// CostTrend is the monthly average cost line.
type CostTrend struct {
	Title  string       `json:"title,omitempty"`
	Points []TrendPoint `json:"points"`
}

// HealthcareDashboard is the full result of one filter evaluation.
type HealthcareDashboard struct {
	Filter      AppliedFilter      `json:"filter"`
	KPIs        HealthcareKPIs     `json:"kpis"`
	CostByGroup []CostCell         `json:"cost_by_group"`
	Outcomes    []OutcomeSlice     `json:"outcomes"`
	Summary     []DiagnosisOutcome `json:"summary"`
	Trend       CostTrend          `json:"trend"`
	Theme       Theme              `json:"theme"`
}
