package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/montanaflynn/stats"

	"pulseboard/internal/analytics"
	"pulseboard/internal/config"
	"pulseboard/internal/dataprocessing"
	"pulseboard/internal/dataset"
	"pulseboard/internal/exporter"
	"pulseboard/internal/infrastructure"
	"pulseboard/pkg/contracts/domain"
)

// OccupationsExportName is the download name of the occupations table.
const OccupationsExportName = "bls_top15"

// excludedOccupation is the BLS roll-up row hidden from the rankings.
const excludedOccupation = "All Occupations"

const metricMentions = "mentions"

// SkillsService serves the Digital Skills Pulse dashboard.
type SkillsService struct {
	data     *dataprocessing.SkillsData
	settings config.DashboardConfig
	pipeline pipeline
}

// NewSkillsService creates the skills dashboard service. data may be nil when
// the sources are disabled; every operation then fails with
// ErrDatasetUnavailable.
func NewSkillsService(data *dataprocessing.SkillsData, settings config.DashboardConfig, inst Instrumentation, logger *slog.Logger) *SkillsService {
	return &SkillsService{
		data:     data,
		settings: settings,
		pipeline: newPipeline(domain.DashboardSkills, inst, logger),
	}
}

// Available reports whether the skills sources were loaded.
func (s *SkillsService) Available() bool {
	return s != nil && s.data != nil
}

// Rows returns the number of BLS rows loaded.
func (s *SkillsService) Rows() int {
	if !s.Available() {
		return 0
	}
	return s.data.BLS.Len()
}

// CountryOptions returns the selectable country table sizes.
func (s *SkillsService) CountryOptions() []int {
	return append([]int(nil), s.settings.CountryTopN...)
}

// ONETOptions returns the selectable digital occupation table sizes.
func (s *SkillsService) ONETOptions() []int {
	return append([]int(nil), s.settings.ONETTopN...)
}

// Overview computes the landing page KPIs and previews.
func (s *SkillsService) Overview(ctx context.Context) (*domain.SkillsOverview, error) {
	if s.data == nil {
		return nil, fmt.Errorf("skills overview: %w", ErrDatasetUnavailable)
	}

	var out domain.SkillsOverview
	err := s.pipeline.stage(ctx, stageAggregate, func(ctx context.Context) (int, error) {
		jobs, err := analytics.SumKPI(s.data.BLS, dataprocessing.BLSEmployment, analytics.Integer)
		if err != nil {
			return 0, err
		}
		adoption, err := analytics.MedianKPI(s.data.ITU, dataprocessing.ITUValue, analytics.Decimal2)
		if err != nil {
			return 0, err
		}
		out.TotalJobs = kpiCard("US Total Jobs", jobs)
		out.MedianAdoption = kpiCard("World: Median Digital Adoption (ITU)", adoption)

		if out.TopOccupations, err = s.rankOccupations(s.data.BLSGrouped, domain.SortByEmployment, s.settings.OverviewBLSLimit, false); err != nil {
			return 0, err
		}
		if out.Countries, err = s.countryRows(s.data.ITU); err != nil {
			return 0, err
		}
		if out.TopDigitalRoles, err = s.digitalOccupations(s.settings.ONETDefault); err != nil {
			return 0, err
		}

		out.TopDigitalJob = domain.TextCard{Label: "Top O*NET Digital Jobs", Display: analytics.SentinelNA, Empty: true}
		if len(out.TopDigitalRoles) > 0 && out.TopDigitalRoles[0].Title != "" {
			out.TopDigitalJob.Display = out.TopDigitalRoles[0].Title
			out.TopDigitalJob.Empty = false
		}
		return len(out.TopOccupations) + len(out.Countries) + len(out.TopDigitalRoles), nil
	})
	if err != nil {
		return nil, fmt.Errorf("skills overview: %w", err)
	}
	return &out, nil
}

// Occupations ranks the grouped BLS occupations by sortBy, excluding the
// "All Occupations" roll-up, and summarizes the wages behind each group.
// An empty sortBy selects TOT_EMP.
func (s *SkillsService) Occupations(ctx context.Context, sortBy string) (*domain.OccupationsView, error) {
	if s.data == nil {
		return nil, fmt.Errorf("occupations: %w", ErrDatasetUnavailable)
	}
	sortBy, err := normalizeSortKey(sortBy)
	if err != nil {
		return nil, err
	}

	view := &domain.OccupationsView{SortBy: sortBy, Title: occupationsTitle(sortBy, s.settings.OccupationsTopN)}
	err = s.pipeline.stage(ctx, stageAggregate, func(ctx context.Context) (int, error) {
		rows, err := s.rankOccupations(s.data.BLSGrouped, sortBy, s.settings.OccupationsTopN, true)
		if err != nil {
			return 0, err
		}
		salaries, err := s.salaryBoxes(rows)
		if err != nil {
			return 0, err
		}
		view.Rows = rows
		view.Salaries = salaries
		view.Top = topOccupationCard(rows, sortBy)
		return len(rows), nil
	})
	if err != nil {
		return nil, fmt.Errorf("occupations: %w", err)
	}
	return view, nil
}

// ExportOccupations serializes the occupations table as bls_top15.csv.
// A trigger of zero or less returns ErrExportNotTriggered.
func (s *SkillsService) ExportOccupations(ctx context.Context, sortBy string, trigger int) (*exporter.Artifact, error) {
	if trigger <= 0 {
		return nil, ErrExportNotTriggered
	}
	view, err := s.Occupations(ctx, sortBy)
	if err != nil {
		return nil, err
	}

	var artifact *exporter.Artifact
	err = s.pipeline.stage(ctx, stageExport, func(ctx context.Context) (int, error) {
		rows := make([]dataset.Row, len(view.Rows))
		for i, r := range view.Rows {
			rows[i] = dataset.Row{r.Title, r.Employment, r.MedianWage}
		}
		table, err := dataset.New(OccupationsExportName, []dataset.Column{
			{Name: dataprocessing.BLSTitle, Kind: dataset.KindString},
			{Name: dataprocessing.BLSEmployment, Kind: dataset.KindNumber},
			{Name: dataprocessing.BLSMedianWage, Kind: dataset.KindNumber},
		}, rows)
		if err != nil {
			return 0, err
		}
		if artifact, err = exporter.Export(table, exporter.FormatCSV, OccupationsExportName); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		infrastructure.RecordExport(ctx, s.pipeline.metrics, domain.DashboardSkills, string(artifact.Format), len(artifact.Data))
		return artifact.Rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("occupations export: %w", err)
	}
	return artifact, nil
}

// Countries returns every country's latest indicator for the map and the
// topN highest for the table. Zero selects the configured default.
func (s *SkillsService) Countries(ctx context.Context, topN int) (*domain.CountriesView, error) {
	if s.data == nil {
		return nil, fmt.Errorf("countries: %w", ErrDatasetUnavailable)
	}
	if topN == 0 {
		topN = s.settings.CountryDefault
	}
	if !containsInt(s.settings.CountryTopN, topN) {
		return nil, fmt.Errorf("%w: %d not in %v", ErrInvalidTopN, topN, s.settings.CountryTopN)
	}

	view := &domain.CountriesView{TopN: topN, Options: s.CountryOptions()}
	err := s.pipeline.stage(ctx, stageAggregate, func(ctx context.Context) (int, error) {
		all, err := s.countryRows(s.data.ITU)
		if err != nil {
			return 0, err
		}
		groups, err := analytics.Aggregate(s.data.ITU, analytics.Query{
			Keys:    []string{dataprocessing.ITUCountry, dataprocessing.ITUPeriod},
			Metrics: []analytics.Metric{{Name: dataprocessing.ITUValue, Op: analytics.OpMean, Column: dataprocessing.ITUValue}},
			SortBy:  dataprocessing.ITUValue,
			Limit:   topN,
		})
		if err != nil {
			return 0, err
		}
		table := make([]domain.CountryRow, len(groups))
		for i, g := range groups {
			table[i] = domain.CountryRow{Country: g.Key[0], Period: g.Key[1], Value: g.Value(dataprocessing.ITUValue)}
		}
		view.Map, view.Table = all, table
		return len(table), nil
	})
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	return view, nil
}

// DigitalOccupations ranks O*NET occupations by digital skill mentions.
// Zero selects the configured default.
func (s *SkillsService) DigitalOccupations(ctx context.Context, topN int) (*domain.DigitalOccupationsView, error) {
	if s.data == nil {
		return nil, fmt.Errorf("digital occupations: %w", ErrDatasetUnavailable)
	}
	if topN == 0 {
		topN = s.settings.ONETDefault
	}
	if !containsInt(s.settings.ONETTopN, topN) {
		return nil, fmt.Errorf("%w: %d not in %v", ErrInvalidTopN, topN, s.settings.ONETTopN)
	}

	view := &domain.DigitalOccupationsView{
		TopN:    topN,
		Options: s.ONETOptions(),
		Title:   fmt.Sprintf("Top %d O*NET Digital Occupations", topN),
	}
	err := s.pipeline.stage(ctx, stageAggregate, func(ctx context.Context) (int, error) {
		rows, err := s.digitalOccupations(topN)
		if err != nil {
			return 0, err
		}
		view.Rows = rows
		return len(rows), nil
	})
	if err != nil {
		return nil, fmt.Errorf("digital occupations: %w", err)
	}
	return view, nil
}

func normalizeSortKey(sortBy string) (string, error) {
	switch sortBy {
	case "":
		return domain.SortByEmployment, nil
	case domain.SortByEmployment, domain.SortByMedianWage:
		return sortBy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, sortBy)
}

func occupationsTitle(sortBy string, n int) string {
	if sortBy == domain.SortByMedianWage {
		return fmt.Sprintf("Top %d US Occupational Groups by Median Salary", n)
	}
	return fmt.Sprintf("Top %d US Occupational Groups by Employment", n)
}

func (s *SkillsService) rankOccupations(grouped *dataset.Dataset, sortBy string, limit int, excludeTotal bool) ([]domain.OccupationRow, error) {
	q := analytics.Query{
		Keys: []string{dataprocessing.BLSTitle},
		Metrics: []analytics.Metric{
			{Name: dataprocessing.BLSEmployment, Op: analytics.OpSum, Column: dataprocessing.BLSEmployment},
			{Name: dataprocessing.BLSMedianWage, Op: analytics.OpMedian, Column: dataprocessing.BLSMedianWage},
		},
		SortBy: sortBy,
		Limit:  limit,
	}
	if excludeTotal {
		q.Exclude = []analytics.Exclusion{{Column: dataprocessing.BLSTitle, Substring: excludedOccupation}}
	}

	groups, err := analytics.Aggregate(grouped, q)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.OccupationRow, len(groups))
	for i, g := range groups {
		rows[i] = domain.OccupationRow{
			Title:      g.Key[0],
			Employment: g.Value(dataprocessing.BLSEmployment),
			MedianWage: g.Value(dataprocessing.BLSMedianWage),
		}
	}
	return rows, nil
}

func topOccupationCard(rows []domain.OccupationRow, sortBy string) domain.TopOccupationCard {
	badge := domain.BadgeTopJob
	if sortBy == domain.SortByMedianWage {
		badge = domain.BadgeTopSalary
	}
	if len(rows) == 0 {
		return domain.TopOccupationCard{
			Title:             analytics.SentinelNA,
			EmployedDisplay:   analytics.Integer(0),
			MedianSalaryLabel: analytics.Currency(0),
			Badge:             badge,
			Empty:             true,
		}
	}
	top := rows[0]
	return domain.TopOccupationCard{
		Title:             top.Title,
		Employed:          top.Employment,
		EmployedDisplay:   analytics.Integer(top.Employment),
		MedianSalary:      top.MedianWage,
		MedianSalaryLabel: analytics.Currency(top.MedianWage),
		Badge:             badge,
	}
}

// salaryBoxes summarizes the raw BLS wages of each ranked title, in rank order.
func (s *SkillsService) salaryBoxes(rows []domain.OccupationRow) ([]domain.SalaryBox, error) {
	wanted := make(map[string]bool, len(rows))
	for _, r := range rows {
		wanted[r.Title] = true
	}

	titleCol, err := s.data.BLS.ColumnOfKind(dataprocessing.BLSTitle, dataset.KindString)
	if err != nil {
		return nil, err
	}
	wageCol, err := s.data.BLS.ColumnOfKind(dataprocessing.BLSMedianWage, dataset.KindNumber)
	if err != nil {
		return nil, err
	}

	samples := make(map[string]stats.Float64Data, len(rows))
	for i := 0; i < s.data.BLS.Len(); i++ {
		title := s.data.BLS.String(i, titleCol)
		if wanted[title] {
			samples[title] = append(samples[title], s.data.BLS.Number(i, wageCol))
		}
	}

	boxes := make([]domain.SalaryBox, 0, len(rows))
	for _, r := range rows {
		box, err := fiveNumberSummary(r.Title, samples[r.Title])
		if err != nil {
			return nil, fmt.Errorf("salary distribution %q: %w", r.Title, err)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

func fiveNumberSummary(title string, data stats.Float64Data) (domain.SalaryBox, error) {
	box := domain.SalaryBox{Title: title, Samples: len(data)}
	if len(data) == 0 {
		return box, nil
	}

	var err error
	if box.Min, err = data.Min(); err != nil {
		return box, err
	}
	if box.Max, err = data.Max(); err != nil {
		return box, err
	}
	if box.Median, err = data.Median(); err != nil {
		return box, err
	}
	if len(data) == 1 {
		box.Q1, box.Q3 = box.Median, box.Median
		return box, nil
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return box, err
	}
	box.Q1, box.Q3 = q.Q1, q.Q3
	return box, nil
}

// countryRows lists the latest indicator per country in dataset order.
func (s *SkillsService) countryRows(itu *dataset.Dataset) ([]domain.CountryRow, error) {
	country, err := itu.ColumnOfKind(dataprocessing.ITUCountry, dataset.KindString)
	if err != nil {
		return nil, err
	}
	period, err := itu.ColumnOfKind(dataprocessing.ITUPeriod, dataset.KindString)
	if err != nil {
		return nil, err
	}
	value, err := itu.ColumnOfKind(dataprocessing.ITUValue, dataset.KindNumber)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CountryRow, itu.Len())
	for i := range rows {
		rows[i] = domain.CountryRow{
			Country: itu.String(i, country),
			Period:  itu.String(i, period),
			Value:   itu.Number(i, value),
		}
	}
	return rows, nil
}

// digitalOccupations counts digital skill rows per O*NET code, most mentions
// first, and joins the occupation titles. Codes without a title keep an
// empty one.
func (s *SkillsService) digitalOccupations(limit int) ([]domain.DigitalOccupationRow, error) {
	groups, err := analytics.Aggregate(s.data.ONET.Digital, analytics.Query{
		Keys:    []string{dataprocessing.ONETCode},
		Metrics: []analytics.Metric{{Name: metricMentions, Op: analytics.OpCount}},
		SortBy:  metricMentions,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	titles, err := s.occupationTitles()
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DigitalOccupationRow, len(groups))
	for i, g := range groups {
		rows[i] = domain.DigitalOccupationRow{
			Code:     g.Key[0],
			Title:    titles[g.Key[0]],
			Mentions: g.Count,
		}
	}
	return rows, nil
}

func (s *SkillsService) occupationTitles() (map[string]string, error) {
	occ := s.data.ONET.Occupations
	code, err := occ.ColumnOfKind(dataprocessing.ONETCode, dataset.KindString)
	if err != nil {
		return nil, err
	}
	title, err := occ.ColumnOfKind(dataprocessing.ONETTitle, dataset.KindString)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, occ.Len())
	for i := 0; i < occ.Len(); i++ {
		if _, seen := titles[occ.String(i, code)]; !seen {
			titles[occ.String(i, code)] = occ.String(i, title)
		}
	}
	return titles, nil
}
