package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/dataset"
)

func date(s string) time.Time {
	t, err := time.Parse(dataset.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func patients(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("patients", []dataset.Column{
		{Name: "Diagnosis", Kind: dataset.KindString},
		{Name: "Gender", Kind: dataset.KindString},
		{Name: "Cost", Kind: dataset.KindNumber},
		{Name: "AdmissionDate", Kind: dataset.KindTime},
		{Name: "Outcome", Kind: dataset.KindString},
	}, []dataset.Row{
		{"Cardio", "Male", 100.0, date("2022-01-01"), "Recovered"},
		{"Cardio", "Female", 300.0, date("2022-06-15"), "Readmitted"},
		{"Neuro", "Female", 200.0, date("2022-12-31"), "Recovered"},
		{"Ortho", "Male", 400.0, date("2023-03-10"), "Recovered"},
		{"Ortho", "Other", 600.0, date("2023-12-31"), "Deceased"},
	})
	require.NoError(t, err)
	return ds
}

func keys(rows []AggregatedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key[0]
	}
	return out
}

func TestFilter(t *testing.T) {
	ds := patients(t)

	tests := []struct {
		name string
		spec FilterSpec
		want []float64
	}{
		{name: "no constraints", spec: FilterSpec{}, want: []float64{100, 300, 200, 400, 600}},
		{
			name: "empty set means no restriction",
			spec: FilterSpec{Categories: map[string][]string{"Diagnosis": {}}},
			want: []float64{100, 300, 200, 400, 600},
		},
		{
			name: "categorical membership",
			spec: FilterSpec{Categories: map[string][]string{"Diagnosis": {"Ortho", "Cardio"}}},
			want: []float64{100, 300, 400, 600},
		},
		{
			name: "constraints are anded",
			spec: FilterSpec{Categories: map[string][]string{
				"Diagnosis": {"Ortho", "Cardio"},
				"Gender":    {"Male"},
			}},
			want: []float64{100, 400},
		},
		{
			name: "date range inclusive on both ends",
			spec: FilterSpec{
				DateColumn: "AdmissionDate",
				Dates:      &DateRange{Start: date("2022-06-15"), End: date("2023-03-10")},
			},
			want: []float64{300, 200, 400},
		},
		{
			name: "inverted date range is empty",
			spec: FilterSpec{
				DateColumn: "AdmissionDate",
				Dates:      &DateRange{Start: date("2023-01-01"), End: date("2022-01-01")},
			},
			want: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(ds, tt.spec)
			require.NoError(t, err)

			costs := make([]float64, got.Len())
			for i := range costs {
				costs[i] = got.Number(i, 2)
			}
			assert.Equal(t, tt.want, costs)

			again, err := Filter(got, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, got.Records(), again.Records(), "filter must be idempotent")
		})
	}

	assert.Equal(t, 5, ds.Len(), "base dataset must be untouched")
}

func TestFilter_Errors(t *testing.T) {
	ds := patients(t)

	_, err := Filter(ds, FilterSpec{Categories: map[string][]string{"Country": {"X"}}})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)

	_, err = Filter(ds, FilterSpec{Categories: map[string][]string{"Cost": {"1"}}})
	assert.ErrorIs(t, err, dataset.ErrColumnKind)

	_, err = Filter(ds, FilterSpec{Dates: &DateRange{}})
	assert.Error(t, err)
}

func TestAggregate_MeanByDiagnosis(t *testing.T) {
	ds := patients(t)

	rows, err := Aggregate(ds, Query{
		Keys:    []string{"Diagnosis"},
		Metrics: []Metric{{Name: "AvgCost", Op: OpMean, Column: "Cost"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	got := map[string]float64{}
	total := 0
	for _, r := range rows {
		got[r.Key[0]] = r.Value("AvgCost")
		total += r.Count
	}
	assert.Equal(t, map[string]float64{"Cardio": 200, "Neuro": 200, "Ortho": 500}, got)
	assert.Equal(t, ds.Len(), total)
	assert.Equal(t, []string{"Cardio", "Neuro", "Ortho"}, keys(rows))
}

func TestAggregate_CountAndMeanInOnePass(t *testing.T) {
	ds := patients(t)

	rows, err := Aggregate(ds, Query{
		Keys: []string{"Diagnosis", "Outcome"},
		Metrics: []Metric{
			{Name: "Count", Op: OpCount},
			{Name: "AvgCost", Op: OpMean, Column: "Cost"},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Cardio", "Readmitted"}, rows[0].Key)
	assert.Equal(t, 1.0, rows[0].Value("Count"))
	assert.Equal(t, 300.0, rows[0].Value("AvgCost"))
}

func TestAggregate_SortLimitAndTies(t *testing.T) {
	ds := patients(t)
	metrics := []Metric{
		{Name: "Total", Op: OpSum, Column: "Cost"},
		{Name: "Median", Op: OpMedian, Column: "Cost"},
		{Name: "Patients", Op: OpCount},
	}

	sorted, err := Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: metrics, SortBy: "Total"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ortho", "Cardio", "Neuro"}, keys(sorted))
	assert.Equal(t, 500.0, sorted[0].Value("Median"))

	// Cardio and Ortho tie on count; encounter order decides.
	byCount, err := Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: metrics, SortBy: "Patients"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardio", "Ortho", "Neuro"}, keys(byCount))

	top1, err := Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: metrics, SortBy: "Total", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ortho"}, keys(top1))

	all, err := Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: metrics, SortBy: "Total", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, keys(sorted), keys(all))

	_, err = Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: metrics, SortBy: "Missing"})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestAggregate_Exclusion(t *testing.T) {
	ds, err := dataset.New("bls", []dataset.Column{
		{Name: "OCC_TITLE", Kind: dataset.KindString},
		{Name: "TOT_EMP", Kind: dataset.KindNumber},
	}, []dataset.Row{
		{"All Occupations Combined", 150000000.0},
		{"Software Developers", 1500000.0},
		{"all occupations, total", 9e9},
		{"Registered Nurses", 3000000.0},
	})
	require.NoError(t, err)

	rows, err := Aggregate(ds, Query{
		Keys:    []string{"OCC_TITLE"},
		Metrics: []Metric{{Name: "TOT_EMP", Op: OpSum, Column: "TOT_EMP"}},
		SortBy:  "TOT_EMP",
		Limit:   15,
		Exclude: []Exclusion{{Column: "OCC_TITLE", Substring: "All Occupations"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Registered Nurses", "Software Developers"}, keys(rows))
}

func TestAggregate_EmptyAndInvalid(t *testing.T) {
	ds := patients(t)
	empty := ds.Where(func(int) bool { return false })

	rows, err := Aggregate(empty, Query{
		Keys:    []string{"Diagnosis"},
		Metrics: []Metric{{Name: "AvgCost", Op: OpMean, Column: "Cost"}},
	})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	_, err = Aggregate(ds, Query{})
	assert.Error(t, err)

	_, err = Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: []Metric{{Name: "x", Op: OpMean, Column: "Gender"}}})
	assert.ErrorIs(t, err, dataset.ErrColumnKind)

	_, err = Aggregate(ds, Query{Keys: []string{"Diagnosis"}, Metrics: []Metric{{Name: "x", Op: "mode", Column: "Cost"}}})
	assert.Error(t, err)
}

func TestKPIs(t *testing.T) {
	ds := patients(t)

	count := CountKPI(ds)
	assert.Equal(t, 5.0, count.Value)
	assert.Equal(t, "5", count.Display)

	mean, err := MeanKPI(ds, "Cost", Currency)
	require.NoError(t, err)
	assert.Equal(t, 320.0, mean.Value)
	assert.Equal(t, "$320", mean.Display)

	median, err := MedianKPI(ds, "Cost", Decimal2)
	require.NoError(t, err)
	assert.Equal(t, "300.00", median.Display)

	sum, err := SumKPI(ds, "Cost", Integer)
	require.NoError(t, err)
	assert.Equal(t, "1,600", sum.Display)

	share, err := ShareKPI(ds, "Outcome", "Recovered")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, share.Value, 1e-9)
	assert.Equal(t, "60.0", share.Display)

	_, err = ShareKPI(ds, "Cost", "x")
	assert.ErrorIs(t, err, dataset.ErrColumnKind)
}

func TestKPIs_EmptySentinels(t *testing.T) {
	empty := patients(t).Where(func(int) bool { return false })

	assert.Equal(t, KPI{Display: "0", Empty: true}, CountKPI(empty))

	mean, err := MeanKPI(empty, "Cost", Currency)
	require.NoError(t, err)
	assert.Equal(t, "N/A", mean.Display)
	assert.True(t, mean.Empty)

	median, err := MedianKPI(empty, "Cost", Decimal2)
	require.NoError(t, err)
	assert.Equal(t, "N/A", median.Display)

	sum, err := SumKPI(empty, "Cost", Integer)
	require.NoError(t, err)
	assert.Equal(t, "0", sum.Display)

	share, err := ShareKPI(empty, "Outcome", "Recovered")
	require.NoError(t, err)
	assert.Equal(t, "0.0", share.Display)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$8,012", Currency(8011.6))
	assert.Equal(t, "5,000", Integer(5000))
	assert.Equal(t, "12.3", Percent(12.34))
	assert.Equal(t, "0.50", Decimal2(0.5))
}
