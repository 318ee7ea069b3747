package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"pulseboard/internal/analytics"
	"pulseboard/internal/dataset"
)

// BLS column names after header normalization.
const (
	BLSTitle      = "OCC_TITLE"
	BLSEmployment = "TOT_EMP"
	BLSMedianWage = "A_MEDIAN"
)

// LoadBLS reads the OEWS national workbook. Header names are trimmed and
// upper-cased. Employment and median wage become numbers, and rows where
// either is missing or not positive are dropped. Every other column is kept
// as text in its original position.
func LoadBLS(ctx context.Context, path string, logger *slog.Logger) (*dataset.Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("bls: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("bls: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("bls: failed to read sheet %q: %w", sheets[0], err)
	}

	ds, dropped, err := buildBLS(rows)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "loaded BLS occupations",
		slog.String("path", path),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", ds.Len()),
		slog.Int("dropped", dropped))

	return ds, nil
}

func buildBLS(rows [][]string) (*dataset.Dataset, int, error) {
	table, err := newRawTable(rows, true)
	if err != nil {
		return nil, 0, fmt.Errorf("bls: %w", err)
	}
	if err := table.require("bls", BLSTitle, BLSEmployment, BLSMedianWage); err != nil {
		return nil, 0, err
	}

	empCol, wageCol := table.index[BLSEmployment], table.index[BLSMedianWage]

	columns := make([]dataset.Column, len(table.headers))
	for i, h := range table.headers {
		columns[i] = dataset.Column{Name: h, Kind: dataset.KindString}
	}
	columns[empCol].Kind = dataset.KindNumber
	columns[wageCol].Kind = dataset.KindNumber

	out := make([]dataset.Row, 0, len(table.records))
	dropped := 0
	for _, rec := range table.records {
		emp, ok1 := parseNumber(rec[empCol])
		wage, ok2 := parseNumber(rec[wageCol])
		if !ok1 || !ok2 || emp <= 0 || wage <= 0 {
			dropped++
			continue
		}
		row := make(dataset.Row, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		row[empCol] = emp
		row[wageCol] = wage
		out = append(out, row)
	}

	ds, err := dataset.New("bls", columns, out)
	if err != nil {
		return nil, 0, fmt.Errorf("bls: %w", err)
	}
	return ds, dropped, nil
}

// GroupBLS collapses the occupation rows to one row per title with total
// employment and the median of the median wages, ordered by title.
func GroupBLS(bls *dataset.Dataset) (*dataset.Dataset, error) {
	groups, err := analytics.Aggregate(bls, analytics.Query{
		Keys: []string{BLSTitle},
		Metrics: []analytics.Metric{
			{Name: BLSEmployment, Op: analytics.OpSum, Column: BLSEmployment},
			{Name: BLSMedianWage, Op: analytics.OpMedian, Column: BLSMedianWage},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bls grouping: %w", err)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key[0] < groups[j].Key[0] })

	rows := make([]dataset.Row, len(groups))
	for i, g := range groups {
		rows[i] = dataset.Row{g.Key[0], g.Value(BLSEmployment), g.Value(BLSMedianWage)}
	}

	return dataset.New("bls_grouped", []dataset.Column{
		{Name: BLSTitle, Kind: dataset.KindString},
		{Name: BLSEmployment, Kind: dataset.KindNumber},
		{Name: BLSMedianWage, Kind: dataset.KindNumber},
	}, rows)
}
