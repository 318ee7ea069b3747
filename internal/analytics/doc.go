// Package analytics implements the filter, aggregate and KPI stages of the
// dashboard pipelines.
//
// Every function here is pure: it reads a dataset.Dataset, never modifies it,
// and returns freshly allocated results. A pipeline invocation is
//
//	subset, _ := analytics.Filter(base, spec)
//	rows, _ := analytics.Aggregate(subset, query)
//	kpi := analytics.CountKPI(subset)
//
// Empty input is never an error. Aggregate returns an empty slice and the KPI
// helpers return their display sentinel.
package analytics
