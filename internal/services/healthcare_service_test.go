package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/dataprocessing"
	"pulseboard/internal/dataset"
	"pulseboard/internal/exporter"
	api "pulseboard/pkg/contracts/api/v1"
	"pulseboard/pkg/contracts/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(dataset.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestHealthcareService(t *testing.T) *HealthcareService {
	t.Helper()
	patients := mustDataset(t, "patients", dataprocessing.PatientColumns(), []dataset.Row{
		{"P00001", day("2022-01-05"), "Male", "Cardio", 1000.0, dataprocessing.OutcomeRecovered},
		{"P00002", day("2022-01-20"), "Female", "Cardio", 3000.0, dataprocessing.OutcomeReadmitted},
		{"P00003", day("2022-02-10"), "Female", "Neuro", 2000.0, dataprocessing.OutcomeRecovered},
		{"P00004", day("2022-03-01"), "Male", "Neuro", 4000.0, dataprocessing.OutcomeDeceased},
	})
	svc, err := NewHealthcareService(patients, Instrumentation{}, nil)
	require.NoError(t, err)
	return svc
}

func TestNewHealthcareService_NilDataset(t *testing.T) {
	_, err := NewHealthcareService(nil, Instrumentation{}, nil)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestHealthcareService_Options(t *testing.T) {
	svc := newTestHealthcareService(t)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardio", "Neuro"}, opts.Diagnoses)
	assert.Equal(t, []string{"Female", "Male"}, opts.Genders)
	assert.Equal(t, []string{"Deceased", "Readmitted", "Recovered"}, opts.Outcomes)
	assert.Equal(t, "2022-01-05", opts.MinDate)
	assert.Equal(t, "2022-03-01", opts.MaxDate)
	assert.True(t, svc.Available())
	assert.Equal(t, 4, svc.Rows())
}

func TestHealthcareService_DashboardUnfiltered(t *testing.T) {
	svc := newTestHealthcareService(t)

	out, err := svc.Dashboard(context.Background(), HealthcareFilter{}, false)
	require.NoError(t, err)

	assert.Equal(t, domain.AppliedFilter{Diagnoses: []string{}, Genders: []string{}, Start: "2022-01-05", End: "2022-03-01"}, out.Filter)

	assert.Equal(t, "Avg Cost ($)", out.KPIs.AverageCost.Label)
	assert.Equal(t, "$2,500", out.KPIs.AverageCost.Display)
	assert.Equal(t, "50.0", out.KPIs.RecoveryRate.Display)
	assert.Equal(t, "25.0", out.KPIs.ReadmissionRate.Display)
	assert.Equal(t, "4", out.KPIs.TotalPatients.Display)

	assert.Equal(t, []domain.CostCell{
		{Diagnosis: "Cardio", Gender: "Female", AverageCost: 3000},
		{Diagnosis: "Cardio", Gender: "Male", AverageCost: 1000},
		{Diagnosis: "Neuro", Gender: "Female", AverageCost: 2000},
		{Diagnosis: "Neuro", Gender: "Male", AverageCost: 4000},
	}, out.CostByGroup)

	require.Len(t, out.Outcomes, 3)
	assert.Equal(t, dataprocessing.OutcomeRecovered, out.Outcomes[0].Outcome)
	assert.Equal(t, 50.0, out.Outcomes[0].Share)
	for _, slice := range out.Outcomes {
		if slice.Outcome == dataprocessing.OutcomeDeceased {
			assert.Equal(t, 0.08, slice.Pull)
		} else {
			assert.Zero(t, slice.Pull)
		}
	}

	assert.Len(t, out.Summary, 4)
	assert.Empty(t, out.Trend.Title)
	assert.Equal(t, []domain.TrendPoint{
		{Month: "2022-01", AverageCost: 2000},
		{Month: "2022-02", AverageCost: 2000},
		{Month: "2022-03", AverageCost: 4000},
	}, out.Trend.Points)
	assert.Equal(t, domain.ThemeLight, out.Theme.Mode)
}

func TestHealthcareService_DashboardFiltered(t *testing.T) {
	svc := newTestHealthcareService(t)
	start := day("2022-01-01")
	end := day("2022-01-31")

	out, err := svc.Dashboard(context.Background(), HealthcareFilter{
		Diagnoses: []string{"Cardio"},
		Start:     &start,
		End:       &end,
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "2", out.KPIs.TotalPatients.Display)
	assert.Equal(t, "$2,000", out.KPIs.AverageCost.Display)
	assert.Equal(t, "2022-01-01", out.Filter.Start)
	assert.Equal(t, []string{"Cardio"}, out.Filter.Diagnoses)
	assert.Equal(t, domain.ThemeDark, out.Theme.Mode)
	assert.Equal(t, "#12151d", out.Theme.Background)
}

func TestHealthcareService_DashboardEmptySelection(t *testing.T) {
	svc := newTestHealthcareService(t)
	start := day("2023-01-01")
	end := day("2022-01-01")

	out, err := svc.Dashboard(context.Background(), HealthcareFilter{Start: &start, End: &end}, false)
	require.NoError(t, err)

	assert.True(t, out.KPIs.AverageCost.Empty)
	assert.Equal(t, "N/A", out.KPIs.AverageCost.Display)
	assert.Equal(t, "0.0", out.KPIs.RecoveryRate.Display)
	assert.Equal(t, "0", out.KPIs.TotalPatients.Display)
	assert.Empty(t, out.CostByGroup)
	assert.Empty(t, out.Outcomes)
	assert.Empty(t, out.Summary)
	assert.Equal(t, EmptyTrendTitle, out.Trend.Title)
	assert.NotNil(t, out.Trend.Points)
	assert.Empty(t, out.Trend.Points)
}

func TestHealthcareService_Export(t *testing.T) {
	svc := newTestHealthcareService(t)
	ctx := context.Background()
	filter := HealthcareFilter{Diagnoses: []string{"Cardio"}, Genders: []string{"Male"}}

	_, err := svc.Export(ctx, filter, "csv", 0)
	assert.ErrorIs(t, err, ErrExportNotTriggered)

	_, err = svc.Export(ctx, filter, "pdf", 1)
	assert.ErrorIs(t, err, exporter.ErrUnsupportedFormat)

	artifact, err := svc.Export(ctx, filter, "csv", 1)
	require.NoError(t, err)
	assert.Equal(t, "filtered_healthcare_data.csv", artifact.Filename)
	assert.Equal(t, 1, artifact.Rows)
	assert.Contains(t, string(artifact.Data), "P00001")
	assert.NotContains(t, string(artifact.Data), "P00002")

	artifact, err = svc.Export(ctx, filter, "", 2)
	require.NoError(t, err)
	assert.Equal(t, "filtered_healthcare_data.xlsx", artifact.Filename)
	assert.Equal(t, exporter.FormatXLSX, artifact.Format)
}

func TestParseHealthcareFilter(t *testing.T) {
	f, err := ParseHealthcareFilter(api.HealthcareFilterRequest{
		Diagnoses: []string{"Neuro"},
		Start:     "2022-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Neuro"}, f.Diagnoses)
	require.NotNil(t, f.Start)
	assert.Equal(t, day("2022-02-01"), *f.Start)
	assert.Nil(t, f.End)

	_, err = ParseHealthcareFilter(api.HealthcareFilterRequest{End: "01/02/2022"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestTheme(t *testing.T) {
	light := Theme(false)
	dark := Theme(true)

	assert.Equal(t, "#0A2540", light.Header)
	assert.Equal(t, "#38bdf8", dark.Header)
	assert.Equal(t, light.FontFamily, dark.FontFamily)
	assert.Len(t, dark.ColorSequence, 11)

	// Callers may not mutate the shared palette.
	dark.ColorSequence[0] = "red"
	assert.Equal(t, "rgb(95, 70, 144)", Theme(true).ColorSequence[0])
}
