package http

import (
	"context"

	"pulseboard/internal/exporter"
	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
)

// SkillsService defines the skills dashboard operations used by the handlers
type SkillsService interface {
	Overview(ctx context.Context) (*domain.SkillsOverview, error)
	Occupations(ctx context.Context, sortBy string) (*domain.OccupationsView, error)
	ExportOccupations(ctx context.Context, sortBy string, trigger int) (*exporter.Artifact, error)
	Countries(ctx context.Context, topN int) (*domain.CountriesView, error)
	DigitalOccupations(ctx context.Context, topN int) (*domain.DigitalOccupationsView, error)
	CountryOptions() []int
	ONETOptions() []int
}

// HealthcareService defines the healthcare dashboard operations used by the handlers
type HealthcareService interface {
	Options(ctx context.Context) (*domain.HealthcareOptions, error)
	Dashboard(ctx context.Context, filter services.HealthcareFilter, dark bool) (*domain.HealthcareDashboard, error)
	Export(ctx context.Context, filter services.HealthcareFilter, format string, trigger int) (*exporter.Artifact, error)
}

var (
	_ SkillsService     = (*services.SkillsService)(nil)
	_ HealthcareService = (*services.HealthcareService)(nil)
)
