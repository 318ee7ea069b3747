package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"pulseboard/internal/dataset"
)

// ITU column names after header normalization.
const (
	ITUCountry = "REF_AREA_LABEL"
	ITUPeriod  = "TIME_PERIOD"
	ITUValue   = "OBS_VALUE"
)

// LoadITU reads the digital indicator CSV and keeps the latest observation
// per country. Countries whose latest value is not numeric are dropped.
func LoadITU(ctx context.Context, path string, logger *slog.Logger) (*dataset.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rows, err := readDelimited(path, ',')
	if err != nil {
		return nil, fmt.Errorf("itu: %w", err)
	}

	ds, err := buildITU(rows)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "loaded ITU indicator",
		slog.String("path", path),
		slog.Int("source_rows", len(rows)-1),
		slog.Int("countries", ds.Len()))

	return ds, nil
}

func buildITU(rows [][]string) (*dataset.Dataset, error) {
	table, err := newRawTable(rows, true)
	if err != nil {
		return nil, fmt.Errorf("itu: %w", err)
	}
	if err := table.require("itu", ITUCountry, ITUPeriod, ITUValue); err != nil {
		return nil, err
	}

	countryCol := table.index[ITUCountry]
	periodCol := table.index[ITUPeriod]
	valueCol := table.index[ITUValue]

	records := make([][]string, len(table.records))
	copy(records, table.records)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a[countryCol] != b[countryCol] {
			return a[countryCol] < b[countryCol]
		}
		return periodLess(a[periodCol], b[periodCol])
	})

	// Sorted by country then period, so the last record of each run is the latest.
	latest := make([][]string, 0)
	for i, rec := range records {
		if i+1 < len(records) && records[i+1][countryCol] == rec[countryCol] {
			continue
		}
		latest = append(latest, rec)
	}

	columns := make([]dataset.Column, len(table.headers))
	for i, h := range table.headers {
		columns[i] = dataset.Column{Name: h, Kind: dataset.KindString}
	}
	columns[valueCol].Kind = dataset.KindNumber

	out := make([]dataset.Row, 0, len(latest))
	for _, rec := range latest {
		v, ok := parseNumber(rec[valueCol])
		if !ok {
			continue
		}
		row := make(dataset.Row, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		row[valueCol] = v
		out = append(out, row)
	}

	ds, err := dataset.New("itu", columns, out)
	if err != nil {
		return nil, fmt.Errorf("itu: %w", err)
	}
	return ds, nil
}

// periodLess orders periods numerically when both parse as numbers
// (years), and lexically otherwise ("2021-Q3", "2022-01").
func periodLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
