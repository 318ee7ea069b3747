package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pulseboard/internal/analytics"
	"pulseboard/internal/dataprocessing"
	"pulseboard/internal/dataset"
	"pulseboard/internal/exporter"
	"pulseboard/internal/infrastructure"
	api "pulseboard/pkg/contracts/api/v1"
	"pulseboard/pkg/contracts/domain"
)

// HealthcareExportName is the download name of the filtered patient rows.
const HealthcareExportName = "filtered_healthcare_data"

// EmptyTrendTitle labels the cost trend when no rows match the filter.
const EmptyTrendTitle = "No data for current filters"

const (
	monthColumn    = "Month"
	monthLayout    = "2006-01"
	deceasedPull   = 0.08
	metricAvgCost  = "average_cost"
	metricPatients = "patients"
)

// HealthcareFilter is a parsed healthcare Filter Specification. Empty lists
// place no restriction; nil dates default to the dataset bounds.
type HealthcareFilter struct {
	Diagnoses []string
	Genders   []string
	Start     *time.Time
	End       *time.Time
}

// ParseHealthcareFilter converts the request contract into a filter.
func ParseHealthcareFilter(req api.HealthcareFilterRequest) (HealthcareFilter, error) {
	f := HealthcareFilter{Diagnoses: req.Diagnoses, Genders: req.Genders}
	for _, d := range []struct {
		raw string
		dst **time.Time
	}{{req.Start, &f.Start}, {req.End, &f.End}} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(dataset.DateLayout, d.raw)
		if err != nil {
			return HealthcareFilter{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidFilter, d.raw)
		}
		*d.dst = &t
	}
	return f, nil
}

// HealthcareService serves the healthcare cost and outcome dashboard.
type HealthcareService struct {
	patients *dataset.Dataset
	minDate  time.Time
	maxDate  time.Time
	hasDates bool
	pipeline pipeline
}

// NewHealthcareService creates the healthcare service over the patient
// dataset. The dataset is read-only for the lifetime of the service.
func NewHealthcareService(patients *dataset.Dataset, inst Instrumentation, logger *slog.Logger) (*HealthcareService, error) {
	if patients == nil {
		return nil, fmt.Errorf("healthcare service: %w", ErrDatasetUnavailable)
	}
	lo, hi, ok, err := patients.TimeBounds(dataprocessing.AdmissionDate)
	if err != nil {
		return nil, fmt.Errorf("healthcare service: %w", err)
	}
	return &HealthcareService{
		patients: patients,
		minDate:  lo,
		maxDate:  hi,
		hasDates: ok,
		pipeline: newPipeline(domain.DashboardHealthcare, inst, logger),
	}, nil
}

// Available reports whether patients were loaded.
func (s *HealthcareService) Available() bool {
	return s != nil && s.patients.Len() > 0
}

// Rows returns the number of patients loaded.
func (s *HealthcareService) Rows() int {
	if s == nil {
		return 0
	}
	return s.patients.Len()
}

// Options lists the values offered by the filter controls.
func (s *HealthcareService) Options(ctx context.Context) (*domain.HealthcareOptions, error) {
	diagnoses, err := s.patients.Distinct(dataprocessing.Diagnosis)
	if err != nil {
		return nil, err
	}
	genders, err := s.patients.Distinct(dataprocessing.Gender)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.patients.Distinct(dataprocessing.Outcome)
	if err != nil {
		return nil, err
	}

	for _, values := range [][]string{diagnoses, genders, outcomes} {
		sort.Strings(values)
	}

	opts := &domain.HealthcareOptions{Diagnoses: diagnoses, Genders: genders, Outcomes: outcomes}
	if s.hasDates {
		opts.MinDate = s.minDate.Format(dataset.DateLayout)
		opts.MaxDate = s.maxDate.Format(dataset.DateLayout)
	}
	return opts, nil
}

// Dashboard runs the filter and computes every dashboard component. An empty
// selection is not an error: KPIs report their sentinels and lists are empty.
func (s *HealthcareService) Dashboard(ctx context.Context, filter HealthcareFilter, dark bool) (*domain.HealthcareDashboard, error) {
	subset, applied, err := s.filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("healthcare dashboard: %w", err)
	}

	out := &domain.HealthcareDashboard{Filter: applied, Theme: Theme(dark)}
	err = s.pipeline.stage(ctx, stageAggregate, func(ctx context.Context) (int, error) {
		var err error
		if out.KPIs, err = healthcareKPIs(subset); err != nil {
			return 0, err
		}
		if out.CostByGroup, err = costByGroup(subset); err != nil {
			return 0, err
		}
		if out.Outcomes, err = outcomeBreakdown(subset); err != nil {
			return 0, err
		}
		if out.Summary, err = diagnosisOutcomes(subset); err != nil {
			return 0, err
		}
		if out.Trend, err = costTrend(subset); err != nil {
			return 0, err
		}
		return subset.Len(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("healthcare dashboard: %w", err)
	}
	return out, nil
}

// Export serializes the filtered patient rows. The format defaults to xlsx.
// A trigger of zero or less returns ErrExportNotTriggered.
func (s *HealthcareService) Export(ctx context.Context, filter HealthcareFilter, format string, trigger int) (*exporter.Artifact, error) {
	if trigger <= 0 {
		return nil, ErrExportNotTriggered
	}
	f, err := exporter.ParseFormat(format, exporter.FormatXLSX)
	if err != nil {
		return nil, err
	}
	subset, _, err := s.filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("healthcare export: %w", err)
	}

	var artifact *exporter.Artifact
	err = s.pipeline.stage(ctx, stageExport, func(ctx context.Context) (int, error) {
		var err error
		if artifact, err = exporter.Export(subset, f, HealthcareExportName); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		infrastructure.RecordExport(ctx, s.pipeline.metrics, domain.DashboardHealthcare, string(f), len(artifact.Data))
		return artifact.Rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("healthcare export: %w", err)
	}
	return artifact, nil
}

func (s *HealthcareService) filter(ctx context.Context, f HealthcareFilter) (*dataset.Dataset, domain.AppliedFilter, error) {
	applied := domain.AppliedFilter{
		Diagnoses: nonNil(f.Diagnoses),
		Genders:   nonNil(f.Genders),
	}
	spec := analytics.FilterSpec{
		Categories: map[string][]string{
			dataprocessing.Diagnosis: f.Diagnoses,
			dataprocessing.Gender:    f.Genders,
		},
	}

	if s.hasDates || f.Start != nil || f.End != nil {
		r := analytics.DateRange{Start: s.minDate, End: s.maxDate}
		if f.Start != nil {
			r.Start = *f.Start
		}
		if f.End != nil {
			r.End = *f.End
		}
		spec.DateColumn = dataprocessing.AdmissionDate
		spec.Dates = &r
		applied.Start = r.Start.Format(dataset.DateLayout)
		applied.End = r.End.Format(dataset.DateLayout)
	}

	var subset *dataset.Dataset
	err := s.pipeline.stage(ctx, stageFilter, func(ctx context.Context) (int, error) {
		var err error
		if subset, err = analytics.Filter(s.patients, spec); err != nil {
			return 0, err
		}
		return subset.Len(), nil
	})
	return subset, applied, err
}

func healthcareKPIs(ds *dataset.Dataset) (domain.HealthcareKPIs, error) {
	cost, err := analytics.MeanKPI(ds, dataprocessing.Cost, analytics.Currency)
	if err != nil {
		return domain.HealthcareKPIs{}, err
	}
	recovered, err := analytics.ShareKPI(ds, dataprocessing.Outcome, dataprocessing.OutcomeRecovered)
	if err != nil {
		return domain.HealthcareKPIs{}, err
	}
	readmitted, err := analytics.ShareKPI(ds, dataprocessing.Outcome, dataprocessing.OutcomeReadmitted)
	if err != nil {
		return domain.HealthcareKPIs{}, err
	}
	return domain.HealthcareKPIs{
		AverageCost:     kpiCard("Avg Cost ($)", cost),
		RecoveryRate:    kpiCard("Recovery Rate (%)", recovered),
		ReadmissionRate: kpiCard("Readmission Rate (%)", readmitted),
		TotalPatients:   kpiCard("Total Patients", analytics.CountKPI(ds)),
	}, nil
}

func costByGroup(ds *dataset.Dataset) ([]domain.CostCell, error) {
	groups, err := analytics.Aggregate(ds, analytics.Query{
		Keys:    []string{dataprocessing.Diagnosis, dataprocessing.Gender},
		Metrics: []analytics.Metric{{Name: metricAvgCost, Op: analytics.OpMean, Column: dataprocessing.Cost}},
	})
	if err != nil {
		return nil, err
	}
	cells := make([]domain.CostCell, len(groups))
	for i, g := range groups {
		cells[i] = domain.CostCell{Diagnosis: g.Key[0], Gender: g.Key[1], AverageCost: g.Value(metricAvgCost)}
	}
	return cells, nil
}

func outcomeBreakdown(ds *dataset.Dataset) ([]domain.OutcomeSlice, error) {
	groups, err := analytics.Aggregate(ds, analytics.Query{
		Keys:    []string{dataprocessing.Outcome},
		Metrics: []analytics.Metric{{Name: metricPatients, Op: analytics.OpCount}},
		SortBy:  metricPatients,
	})
	if err != nil {
		return nil, err
	}
	slices := make([]domain.OutcomeSlice, len(groups))
	for i, g := range groups {
		slices[i] = domain.OutcomeSlice{
			Outcome: g.Key[0],
			Count:   g.Count,
			Share:   100 * float64(g.Count) / float64(ds.Len()),
		}
		if g.Key[0] == dataprocessing.OutcomeDeceased {
			slices[i].Pull = deceasedPull
		}
	}
	return slices, nil
}

func diagnosisOutcomes(ds *dataset.Dataset) ([]domain.DiagnosisOutcome, error) {
	groups, err := analytics.Aggregate(ds, analytics.Query{
		Keys: []string{dataprocessing.Diagnosis, dataprocessing.Outcome},
		Metrics: []analytics.Metric{
			{Name: metricPatients, Op: analytics.OpCount},
			{Name: metricAvgCost, Op: analytics.OpMean, Column: dataprocessing.Cost},
		},
	})
	if err != nil {
		return nil, err
	}
	rows := make([]domain.DiagnosisOutcome, len(groups))
	for i, g := range groups {
		rows[i] = domain.DiagnosisOutcome{
			Diagnosis:   g.Key[0],
			Outcome:     g.Key[1],
			Count:       g.Count,
			AverageCost: g.Value(metricAvgCost),
		}
	}
	return rows, nil
}

// costTrend averages cost per admission month, oldest month first.
func costTrend(ds *dataset.Dataset) (domain.CostTrend, error) {
	if ds.Len() == 0 {
		return domain.CostTrend{Title: EmptyTrendTitle, Points: []domain.TrendPoint{}}, nil
	}

	dateCol, err := ds.ColumnOfKind(dataprocessing.AdmissionDate, dataset.KindTime)
	if err != nil {
		return domain.CostTrend{}, err
	}
	withMonth, err := ds.WithColumn(dataset.Column{Name: monthColumn, Kind: dataset.KindString}, func(row dataset.Row) any {
		return row[dateCol].(time.Time).Format(monthLayout)
	})
	if err != nil {
		return domain.CostTrend{}, err
	}

	groups, err := analytics.Aggregate(withMonth, analytics.Query{
		Keys:    []string{monthColumn},
		Metrics: []analytics.Metric{{Name: metricAvgCost, Op: analytics.OpMean, Column: dataprocessing.Cost}},
	})
	if err != nil {
		return domain.CostTrend{}, err
	}
	points := make([]domain.TrendPoint, len(groups))
	for i, g := range groups {
		points[i] = domain.TrendPoint{Month: g.Key[0], AverageCost: g.Value(metricAvgCost)}
	}
	// YYYY-MM keys sort chronologically; keep the order explicit.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return domain.CostTrend{Points: points}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
