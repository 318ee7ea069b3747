package dataset

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the type of values stored in a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column describes one named, typed column of a dataset.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Row holds the cell values of a single record in column order.
// String columns hold string, number columns float64 and time columns time.Time.
type Row []any

var (
	// ErrUnknownColumn is returned when a column name is not part of the dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrColumnKind is returned when a column is accessed as the wrong kind.
	ErrColumnKind = errors.New("column kind mismatch")
)

// Dataset is an immutable, ordered collection of rows with named, typed columns.
//
// A Dataset never changes after construction. Views returned by Select and
// Where share row storage with their parent, so a Dataset can be read from
// any number of goroutines without locking.
type Dataset struct {
	name    string
	columns []Column
	index   map[string]int
	rows    []Row
}

// New validates the rows against the column definitions and returns a Dataset.
// The rows slice is copied; individual rows are not.
func New(name string, columns []Column, rows []Row) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset %q: no columns", name)
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("dataset %q: column %d has no name", name, i)
		}
		if _, dup := index[col.Name]; dup {
			return nil, fmt.Errorf("dataset %q: duplicate column %q", name, col.Name)
		}
		index[col.Name] = i
	}

	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("dataset %q: row %d has %d cells, want %d", name, r, len(row), len(columns))
		}
		for c, cell := range row {
			if !cellMatches(columns[c].Kind, cell) {
				return nil, fmt.Errorf("dataset %q: row %d column %q: %w: want %s, got %T",
					name, r, columns[c].Name, ErrColumnKind, columns[c].Kind, cell)
			}
		}
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)
	rs := make([]Row, len(rows))
	copy(rs, rows)

	return &Dataset{name: name, columns: cols, index: index, rows: rs}, nil
}

func cellMatches(kind Kind, cell any) bool {
	switch kind {
	case KindString:
		_, ok := cell.(string)
		return ok
	case KindNumber:
		_, ok := cell.(float64)
		return ok
	case KindTime:
		_, ok := cell.(time.Time)
		return ok
	}
	return false
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns a copy of the column definitions in order.
func (d *Dataset) Columns() []Column {
	cols := make([]Column, len(d.columns))
	copy(cols, d.columns)
	return cols
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (Column, int, error) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, -1, fmt.Errorf("%w: %q in dataset %q", ErrUnknownColumn, name, d.name)
	}
	return d.columns[i], i, nil
}

// ColumnOfKind looks up a column by name and checks its kind.
func (d *Dataset) ColumnOfKind(name string, kind Kind) (int, error) {
	col, i, err := d.Column(name)
	if err != nil {
		return -1, err
	}
	if col.Kind != kind {
		return -1, fmt.Errorf("%w: column %q is %s, want %s", ErrColumnKind, name, col.Kind, kind)
	}
	return i, nil
}

// Row returns the i-th row. Callers must not modify it.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// String returns a string cell. The column index must refer to a string column.
func (d *Dataset) String(row, col int) string { return d.rows[row][col].(string) }

// Number returns a numeric cell. The column index must refer to a number column.
func (d *Dataset) Number(row, col int) float64 { return d.rows[row][col].(float64) }

// Time returns a time cell. The column index must refer to a time column.
func (d *Dataset) Time(row, col int) time.Time { return d.rows[row][col].(time.Time) }

// Select returns a view holding the rows at the given indices, in the given order.
func (d *Dataset) Select(indices []int) *Dataset {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = d.rows[idx]
	}
	return d.derive(rows)
}

// Where returns a view with the rows for which keep returns true, preserving order.
func (d *Dataset) Where(keep func(i int) bool) *Dataset {
	rows := make([]Row, 0, len(d.rows))
	for i, row := range d.rows {
		if keep(i) {
			rows = append(rows, row)
		}
	}
	return d.derive(rows)
}

// Head returns a view with at most the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n >= len(d.rows) {
		return d
	}
	return d.derive(d.rows[:n:n])
}

// Rename returns a view whose columns carry new names. Names missing from
// the mapping are kept.
func (d *Dataset) Rename(names map[string]string) (*Dataset, error) {
	cols := d.Columns()
	for i := range cols {
		if n, ok := names[cols[i].Name]; ok {
			cols[i].Name = n
		}
	}
	return New(d.name, cols, d.rows)
}

// Project returns a dataset holding only the named columns, in the given order.
func (d *Dataset) Project(names ...string) (*Dataset, error) {
	cols := make([]Column, len(names))
	idx := make([]int, len(names))
	for i, n := range names {
		col, ci, err := d.Column(n)
		if err != nil {
			return nil, err
		}
		cols[i], idx[i] = col, ci
	}
	rows := make([]Row, len(d.rows))
	for r, row := range d.rows {
		out := make(Row, len(idx))
		for i, ci := range idx {
			out[i] = row[ci]
		}
		rows[r] = out
	}
	return New(d.name, cols, rows)
}

// WithColumn returns a new dataset with an extra column computed from each row.
func (d *Dataset) WithColumn(col Column, compute func(row Row) any) (*Dataset, error) {
	cols := append(d.Columns(), col)
	rows := make([]Row, len(d.rows))
	for r, row := range d.rows {
		out := make(Row, len(row)+1)
		copy(out, row)
		out[len(row)] = compute(row)
		rows[r] = out
	}
	return New(d.name, cols, rows)
}

// Distinct returns the distinct values of a string column in first-seen order.
func (d *Dataset) Distinct(name string) ([]string, error) {
	ci, err := d.ColumnOfKind(name, KindString)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for r := range d.rows {
		v := d.String(r, ci)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// TimeBounds returns the earliest and latest value of a time column.
// ok is false when the dataset is empty.
func (d *Dataset) TimeBounds(name string) (lo, hi time.Time, ok bool, err error) {
	ci, err := d.ColumnOfKind(name, KindTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	for r := range d.rows {
		t := d.Time(r, ci)
		if !ok || t.Before(lo) {
			lo = t
		}
		if !ok || t.After(hi) {
			hi = t
		}
		ok = true
	}
	return lo, hi, ok, nil
}

// Records returns every row formatted as strings, for serialisation.
func (d *Dataset) Records() [][]string {
	out := make([][]string, len(d.rows))
	for r, row := range d.rows {
		rec := make([]string, len(row))
		for c, cell := range row {
			rec[c] = FormatCell(cell)
		}
		out[r] = rec
	}
	return out
}

func (d *Dataset) derive(rows []Row) *Dataset {
	return &Dataset{name: d.name, columns: d.columns, index: d.index, rows: rows}
}
