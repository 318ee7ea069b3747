package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"pulseboard/internal/dataset"
)

// O*NET file and column names.
const (
	ONETOccupationFile = "Occupation Data.txt"
	ONETTechnologyFile = "Technology Skills.txt"

	ONETCode           = "O*NET-SOC Code"
	ONETTitle          = "Title"
	ONETCommodityTitle = "Commodity Title"
)

// DigitalKeywords mark a technology skill as digital when its commodity
// title contains one of them, ignoring case.
var DigitalKeywords = []string{"Computer", "Software", "Python", "AI"}

// ONET holds the two O*NET tables used by the skills dashboard.
type ONET struct {
	Occupations *dataset.Dataset
	// Digital holds only the technology skill rows whose commodity title
	// matches DigitalKeywords.
	Digital *dataset.Dataset
	// TechnologyRows is the number of technology skill rows before filtering.
	TechnologyRows int
}

// LoadONET reads the occupation and technology skill files from dir.
func LoadONET(ctx context.Context, dir string, logger *slog.Logger) (*ONET, error) {
	if logger == nil {
		logger = slog.Default()
	}

	occRows, err := readDelimited(filepath.Join(dir, ONETOccupationFile), '\t')
	if err != nil {
		return nil, fmt.Errorf("onet occupations: %w", err)
	}
	techRows, err := readDelimited(filepath.Join(dir, ONETTechnologyFile), '\t')
	if err != nil {
		return nil, fmt.Errorf("onet technology skills: %w", err)
	}

	onet, err := buildONET(occRows, techRows)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "loaded O*NET database",
		slog.String("dir", dir),
		slog.Int("occupations", onet.Occupations.Len()),
		slog.Int("technology_rows", onet.TechnologyRows),
		slog.Int("digital_rows", onet.Digital.Len()))

	return onet, nil
}

func buildONET(occRows, techRows [][]string) (*ONET, error) {
	occ, err := newRawTable(occRows, false)
	if err != nil {
		return nil, fmt.Errorf("onet occupations: %w", err)
	}
	if err := occ.require("onet occupations", ONETCode, ONETTitle); err != nil {
		return nil, err
	}

	tech, err := newRawTable(techRows, false)
	if err != nil {
		return nil, fmt.Errorf("onet technology skills: %w", err)
	}
	if err := tech.require("onet technology skills", ONETCode, ONETCommodityTitle); err != nil {
		return nil, err
	}

	occupations, err := stringDataset("onet_occupations", occ, occ.records)
	if err != nil {
		return nil, err
	}

	commodity := tech.index[ONETCommodityTitle]
	digital := make([][]string, 0)
	for _, rec := range tech.records {
		if IsDigitalSkill(rec[commodity]) {
			digital = append(digital, rec)
		}
	}
	digitalDS, err := stringDataset("onet_digital", tech, digital)
	if err != nil {
		return nil, err
	}

	return &ONET{Occupations: occupations, Digital: digitalDS, TechnologyRows: len(tech.records)}, nil
}

// IsDigitalSkill reports whether a commodity title matches DigitalKeywords.
func IsDigitalSkill(commodityTitle string) bool {
	lower := strings.ToLower(commodityTitle)
	for _, kw := range DigitalKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func stringDataset(name string, table *rawTable, records [][]string) (*dataset.Dataset, error) {
	columns := make([]dataset.Column, len(table.headers))
	for i, h := range table.headers {
		columns[i] = dataset.Column{Name: h, Kind: dataset.KindString}
	}
	rows := make([]dataset.Row, len(records))
	for r, rec := range records {
		row := make(dataset.Row, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		rows[r] = row
	}
	ds, err := dataset.New(name, columns, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}
