package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"pulseboard/internal/dataset"
)

// Op is a summary statistic computed per group.
type Op string

const (
	OpCount  Op = "count"
	OpMean   Op = "mean"
	OpMedian Op = "median"
	OpSum    Op = "sum"
)

// ErrUnknownMetric is returned when a query sorts by a metric it does not compute.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric names one output value of an aggregation. Column is ignored for OpCount.
type Metric struct {
	Name   string
	Op     Op
	Column string
}

// Exclusion drops rows whose Column contains Substring, ignoring case,
// before grouping.
type Exclusion struct {
	Column    string
	Substring string
}

// Query configures one aggregation call.
type Query struct {
	// Keys are the one or two string columns to group by.
	Keys    []string
	Metrics []Metric
	// SortBy names a metric; groups are then ordered by it descending.
	// Without it groups are ordered by key ascending.
	SortBy  string
	Limit   int
	Exclude []Exclusion
}

// AggregatedRow is one group of an aggregation result.
type AggregatedRow struct {
	Key    []string           `json:"key"`
	Count  int                `json:"count"`
	Values map[string]float64 `json:"values"`
}

// Value returns the named metric value.
func (r AggregatedRow) Value(name string) float64 { return r.Values[name] }

type group struct {
	key     []string
	rows    []int
	samples map[string][]float64
}

// Aggregate groups ds by the query keys and computes the requested metrics for
// each group in a single pass. It returns exactly one row per distinct key
// present in ds after exclusions, and an empty non-nil slice when there is
// nothing to group.
func Aggregate(ds *dataset.Dataset, q Query) ([]AggregatedRow, error) {
	if len(q.Keys) == 0 || len(q.Keys) > 2 {
		return nil, fmt.Errorf("aggregate: need one or two key columns, got %d", len(q.Keys))
	}

	keyCols := make([]int, len(q.Keys))
	for i, k := range q.Keys {
		col, err := ds.ColumnOfKind(k, dataset.KindString)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		keyCols[i] = col
	}

	metricCols := make([]int, len(q.Metrics))
	for i, m := range q.Metrics {
		switch m.Op {
		case OpCount:
			metricCols[i] = -1
		case OpMean, OpMedian, OpSum:
			col, err := ds.ColumnOfKind(m.Column, dataset.KindNumber)
			if err != nil {
				return nil, fmt.Errorf("aggregate: metric %q: %w", m.Name, err)
			}
			metricCols[i] = col
		default:
			return nil, fmt.Errorf("aggregate: metric %q: unsupported op %q", m.Name, m.Op)
		}
	}

	if q.SortBy != "" && !hasMetric(q.Metrics, q.SortBy) {
		return nil, fmt.Errorf("aggregate: sort by %q: %w", q.SortBy, ErrUnknownMetric)
	}

	subset, err := exclude(ds, q.Exclude)
	if err != nil {
		return nil, err
	}

	groups := make([]*group, 0)
	byKey := make(map[string]*group)
	for i := 0; i < subset.Len(); i++ {
		key := make([]string, len(keyCols))
		for k, col := range keyCols {
			key[k] = subset.String(i, col)
		}
		id := strings.Join(key, "\x00")
		g, ok := byKey[id]
		if !ok {
			g = &group{key: key, samples: make(map[string][]float64)}
			byKey[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
		for m, col := range metricCols {
			if col >= 0 {
				name := q.Metrics[m].Name
				g.samples[name] = append(g.samples[name], subset.Number(i, col))
			}
		}
	}

	result := make([]AggregatedRow, 0, len(groups))
	for _, g := range groups {
		row := AggregatedRow{Key: g.key, Count: len(g.rows), Values: make(map[string]float64, len(q.Metrics))}
		for _, m := range q.Metrics {
			v, err := summarize(m.Op, len(g.rows), g.samples[m.Name])
			if err != nil {
				return nil, fmt.Errorf("aggregate: metric %q: %w", m.Name, err)
			}
			row.Values[m.Name] = v
		}
		result = append(result, row)
	}

	if q.SortBy != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Values[q.SortBy] > result[j].Values[q.SortBy]
		})
	} else {
		sort.SliceStable(result, func(i, j int) bool {
			return lessKey(result[i].Key, result[j].Key)
		})
	}

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}
	return result, nil
}

func summarize(op Op, count int, samples []float64) (float64, error) {
	switch op {
	case OpCount:
		return float64(count), nil
	case OpMean:
		return stats.Mean(samples)
	case OpMedian:
		return stats.Median(samples)
	case OpSum:
		return stats.Sum(samples)
	}
	return 0, fmt.Errorf("unsupported op %q", op)
}

func exclude(ds *dataset.Dataset, rules []Exclusion) (*dataset.Dataset, error) {
	if len(rules) == 0 {
		return ds, nil
	}
	cols := make([]int, len(rules))
	needles := make([]string, len(rules))
	for i, r := range rules {
		col, err := ds.ColumnOfKind(r.Column, dataset.KindString)
		if err != nil {
			return nil, fmt.Errorf("aggregate: exclusion: %w", err)
		}
		cols[i] = col
		needles[i] = strings.ToLower(r.Substring)
	}
	return ds.Where(func(i int) bool {
		for r, col := range cols {
			if strings.Contains(strings.ToLower(ds.String(i, col)), needles[r]) {
				return false
			}
		}
		return true
	}), nil
}

func hasMetric(metrics []Metric, name string) bool {
	for _, m := range metrics {
		if m.Name == name {
			return true
		}
	}
	return false
}

func lessKey(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
