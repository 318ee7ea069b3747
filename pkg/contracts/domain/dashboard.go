// Package domain contains the response contracts shared by the HTTP API, the
// live filter channel and the export CLI. Every type is chart-ready: rows are
// already ordered and display strings already formatted.
package domain

// KPICard is a single headline number.
type KPICard struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Empty   bool    `json:"empty"`
}

// TextCard is a headline whose value is text rather than a number.
type TextCard struct {
	Label   string `json:"label"`
	Display string `json:"display"`
	Empty   bool   `json:"empty"`
}

// Dashboard names.
const (
	DashboardSkills     = "skills"
	DashboardHealthcare = "healthcare"
)
