package analytics

import (
	"fmt"
	"sort"
	"time"

	"pulseboard/internal/dataset"
)

// DateRange is an inclusive [Start, End] constraint on a time column.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Inverted reports whether the range starts after it ends.
func (r DateRange) Inverted() bool {
	return r.Start.After(r.End)
}

// FilterSpec describes the constraints selected by a caller for one pipeline run.
//
// Categories maps a string column to the set of accepted values. A column with
// an empty set places no restriction on that column. All constraints are ANDed.
type FilterSpec struct {
	Categories map[string][]string
	DateColumn string
	Dates      *DateRange
}

// Filter returns the rows of ds that satisfy every constraint in spec, in their
// original order. The base dataset is never modified.
//
// An inverted date range yields an empty result rather than an error. Naming a
// column that does not exist, or has the wrong kind, is an error.
func Filter(ds *dataset.Dataset, spec FilterSpec) (*dataset.Dataset, error) {
	type categorical struct {
		col     int
		allowed map[string]struct{}
	}

	// Sorted for deterministic error reporting.
	names := make([]string, 0, len(spec.Categories))
	for name := range spec.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	constraints := make([]categorical, 0, len(names))
	for _, name := range names {
		values := spec.Categories[name]
		col, err := ds.ColumnOfKind(name, dataset.KindString)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if len(values) == 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		constraints = append(constraints, categorical{col: col, allowed: allowed})
	}

	dateCol := -1
	if spec.Dates != nil {
		if spec.DateColumn == "" {
			return nil, fmt.Errorf("filter: date range given without a date column")
		}
		col, err := ds.ColumnOfKind(spec.DateColumn, dataset.KindTime)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if spec.Dates.Inverted() {
			return ds.Where(func(int) bool { return false }), nil
		}
		dateCol = col
	}

	return ds.Where(func(i int) bool {
		for _, c := range constraints {
			if _, ok := c.allowed[ds.String(i, c.col)]; !ok {
				return false
			}
		}
		if dateCol >= 0 && !spec.Dates.Contains(ds.Time(i, dateCol)) {
			return false
		}
		return true
	}), nil
}
