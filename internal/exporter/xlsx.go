package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pulseboard/internal/dataset"
)

// DefaultSheet is the sheet name used for spreadsheet exports.
const DefaultSheet = "Sheet1"

// WriteXLSX writes ds as a single-sheet workbook with a header row.
// Number cells stay numeric; every other cell is written as text.
func WriteXLSX(w io.Writer, sheet string, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	stream, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	names := ds.ColumnNames()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for r := 0; r < ds.Len(); r++ {
		row := ds.Row(r)
		cells := make([]interface{}, len(row))
		for c, cell := range row {
			if v, ok := cell.(float64); ok {
				cells[c] = v
				continue
			}
			cells[c] = dataset.FormatCell(cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := stream.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
