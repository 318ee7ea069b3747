// Package dataset provides the in-memory tabular structure shared by every
// dashboard pipeline.
//
// A Dataset is built once at load time and is read-only afterwards. Filtering
// and projection return views or new datasets; nothing mutates a Dataset in
// place, so a single base dataset can back any number of concurrent requests.
//
// Cells are typed by their column:
//
//	KindString  string
//	KindNumber  float64
//	KindTime    time.Time
package dataset
