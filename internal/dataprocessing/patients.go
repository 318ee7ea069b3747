package dataprocessing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"pulseboard/internal/config"
	"pulseboard/internal/dataset"
)

// Patient dataset column names.
const (
	PatientID     = "PatientID"
	AdmissionDate = "AdmissionDate"
	Gender        = "Gender"
	Diagnosis     = "Diagnosis"
	Cost          = "Cost"
	Outcome       = "Outcome"
)

// Outcome values used by the healthcare KPIs.
const (
	OutcomeRecovered  = "Recovered"
	OutcomeReadmitted = "Readmitted"
	OutcomeDeceased   = "Deceased"
)

// weighted is a categorical distribution over labels.
type weighted struct {
	labels  []string
	weights []float64
}

var (
	genders = weighted{
		labels:  []string{"Male", "Female", "Other"},
		weights: []float64{0.48, 0.48, 0.04},
	}
	diagnoses = weighted{
		labels:  []string{"Cardio", "Neuro", "Ortho", "Respiratory", "Gastro"},
		weights: []float64{1, 1, 1, 1, 1},
	}
	outcomes = weighted{
		labels:  []string{OutcomeRecovered, OutcomeReadmitted, "Complication", OutcomeDeceased},
		weights: []float64{0.75, 0.12, 0.10, 0.03},
	}
)

// PatientOptions configures the synthetic patient generator.
type PatientOptions struct {
	Count    int
	Seed     uint64
	Start    time.Time
	End      time.Time
	CostMean float64
	CostSD   float64
	CostMin  float64
	CostMax  float64
}

// DefaultPatientOptions returns the standard synthetic cohort: 5000 patients
// admitted during 2022 and 2023 with costs around $8,000.
func DefaultPatientOptions() PatientOptions {
	return PatientOptions{
		Count:    5000,
		Seed:     42,
		Start:    time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		CostMean: 8000,
		CostSD:   2500,
		CostMin:  1000,
		CostMax:  25000,
	}
}

// PatientOptionsFrom applies the healthcare section of the configuration to
// the default cohort.
func PatientOptionsFrom(cfg config.HealthcareConfig) (PatientOptions, error) {
	opts := DefaultPatientOptions()
	start, end, err := cfg.Window()
	if err != nil {
		return opts, err
	}
	opts.Count = cfg.Patients
	opts.Seed = cfg.Seed
	opts.Start = start
	opts.End = end
	if cfg.CostMean > 0 {
		opts.CostMean = cfg.CostMean
	}
	if cfg.CostSD > 0 {
		opts.CostSD = cfg.CostSD
	}
	return opts, nil
}

// GeneratePatients builds the synthetic patient dataset. The same options
// always produce the same rows.
func GeneratePatients(opts PatientOptions) (*dataset.Dataset, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("patients: negative count %d", opts.Count)
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("patients: end %s before start %s",
			opts.End.Format(dataset.DateLayout), opts.Start.Format(dataset.DateLayout))
	}
	if opts.CostMax < opts.CostMin {
		return nil, fmt.Errorf("patients: cost max %.2f below min %.2f", opts.CostMax, opts.CostMin)
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	cost := distuv.Normal{Mu: opts.CostMean, Sigma: opts.CostSD, Src: src}
	gender := distuv.NewCategorical(genders.weights, src)
	diagnosis := distuv.NewCategorical(diagnoses.weights, src)
	outcome := distuv.NewCategorical(outcomes.weights, src)

	start := opts.Start.UTC().Truncate(24 * time.Hour)
	days := int(opts.End.UTC().Truncate(24*time.Hour).Sub(start).Hours()/24) + 1

	rows := make([]dataset.Row, opts.Count)
	for i := range rows {
		c := math.Round(clamp(cost.Rand(), opts.CostMin, opts.CostMax)*100) / 100
		rows[i] = dataset.Row{
			fmt.Sprintf("P%05d", i+1),
			start.AddDate(0, 0, rng.IntN(days)),
			genders.labels[int(gender.Rand())],
			diagnoses.labels[int(diagnosis.Rand())],
			c,
			outcomes.labels[int(outcome.Rand())],
		}
	}

	return dataset.New("patients", PatientColumns(), rows)
}

// PatientColumns returns the patient dataset schema in column order.
func PatientColumns() []dataset.Column {
	return []dataset.Column{
		{Name: PatientID, Kind: dataset.KindString},
		{Name: AdmissionDate, Kind: dataset.KindTime},
		{Name: Gender, Kind: dataset.KindString},
		{Name: Diagnosis, Kind: dataset.KindString},
		{Name: Cost, Kind: dataset.KindNumber},
		{Name: Outcome, Kind: dataset.KindString},
	}
}

// Diagnoses returns the diagnosis groups the generator draws from.
func Diagnoses() []string { return append([]string(nil), diagnoses.labels...) }

// Genders returns the gender values the generator draws from.
func Genders() []string { return append([]string(nil), genders.labels...) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
