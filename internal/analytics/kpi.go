package analytics

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pulseboard/internal/dataset"
)

// Display sentinels for KPIs over empty input.
const (
	SentinelNA      = "N/A"
	SentinelZero    = "0"
	SentinelPercent = "0.0"
)

// KPI is a single-number summary with its display string.
type KPI struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Empty   bool    `json:"empty"`
}

// Formatter renders a KPI value for display.
type Formatter func(v float64) string

var printer = message.NewPrinter(language.English)

// Currency formats whole dollars with thousands separators, e.g. "$8,012".
func Currency(v float64) string { return printer.Sprintf("$%.0f", v) }

// Integer formats with thousands separators, e.g. "5,000".
func Integer(v float64) string { return printer.Sprintf("%.0f", v) }

// Percent formats a percentage with one decimal, e.g. "75.2".
func Percent(v float64) string { return fmt.Sprintf("%.1f", v) }

// Decimal2 formats with two decimals.
func Decimal2(v float64) string { return fmt.Sprintf("%.2f", v) }

// CountKPI reports the number of rows; "0" when empty.
func CountKPI(ds *dataset.Dataset) KPI {
	n := ds.Len()
	if n == 0 {
		return KPI{Display: SentinelZero, Empty: true}
	}
	return KPI{Value: float64(n), Display: Integer(float64(n))}
}

// MeanKPI reports the mean of a numeric column; "N/A" when empty.
func MeanKPI(ds *dataset.Dataset, column string, format Formatter) (KPI, error) {
	return numericKPI(ds, column, format, SentinelNA, stats.Mean)
}

// MedianKPI reports the median of a numeric column; "N/A" when empty.
func MedianKPI(ds *dataset.Dataset, column string, format Formatter) (KPI, error) {
	return numericKPI(ds, column, format, SentinelNA, stats.Median)
}

// SumKPI reports the sum of a numeric column; "0" when empty.
func SumKPI(ds *dataset.Dataset, column string, format Formatter) (KPI, error) {
	return numericKPI(ds, column, format, SentinelZero, stats.Sum)
}

// ShareKPI reports the percentage of rows whose column equals value; "0.0" when empty.
func ShareKPI(ds *dataset.Dataset, column, value string) (KPI, error) {
	col, err := ds.ColumnOfKind(column, dataset.KindString)
	if err != nil {
		return KPI{}, fmt.Errorf("share kpi: %w", err)
	}
	n := ds.Len()
	if n == 0 {
		return KPI{Display: SentinelPercent, Empty: true}, nil
	}
	hits := 0
	for i := 0; i < n; i++ {
		if ds.String(i, col) == value {
			hits++
		}
	}
	pct := float64(hits) / float64(n) * 100
	return KPI{Value: pct, Display: Percent(pct)}, nil
}

func numericKPI(ds *dataset.Dataset, column string, format Formatter, sentinel string, fn func(stats.Float64Data) (float64, error)) (KPI, error) {
	col, err := ds.ColumnOfKind(column, dataset.KindNumber)
	if err != nil {
		return KPI{}, fmt.Errorf("kpi: %w", err)
	}
	if ds.Len() == 0 {
		return KPI{Display: sentinel, Empty: true}, nil
	}
	values := make(stats.Float64Data, ds.Len())
	for i := range values {
		values[i] = ds.Number(i, col)
	}
	v, err := fn(values)
	if err != nil {
		return KPI{}, fmt.Errorf("kpi %s: %w", column, err)
	}
	return KPI{Value: v, Display: format(v)}, nil
}
