package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a source file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// rawTable is a header row plus string records padded to the header width.
type rawTable struct {
	headers []string
	index   map[string]int
	records [][]string
}

func newRawTable(rows [][]string, upper bool) (*rawTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	headers := make([]string, len(rows[0]))
	index := make(map[string]int, len(headers))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if upper {
			h = strings.ToUpper(h)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := index[h]; dup {
			h = fmt.Sprintf("%s.%d", h, i)
		}
		headers[i] = h
		index[h] = i
	}

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make([]string, len(headers))
		for i := range rec {
			if i < len(row) {
				rec[i] = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}

	return &rawTable{headers: headers, index: index, records: records}, nil
}

func (t *rawTable) require(source string, names ...string) error {
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			return fmt.Errorf("%s: %w %q", source, ErrMissingColumn, n)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// readDelimited reads a delimited text file into rows.
func readDelimited(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return parseDelimited(file, comma)
}

func parseDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return rows, nil
}

// parseNumber coerces a spreadsheet cell to a number. Blank cells and the
// footnote markers used by statistical releases ("*", "**", "#") are missing.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	switch s {
	case "", "*", "**", "#", "~", "-":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
