package domain

// Sort keys accepted by the occupations view.
const (
	SortByEmployment = "TOT_EMP"
	SortByMedianWage = "A_MEDIAN"
)

// Badges shown on the leading occupation card.
const (
	BadgeTopJob    = "Top Job"
	BadgeTopSalary = "Top Salary"
)

// OccupationRow is one grouped BLS occupation.
type OccupationRow struct {
	Title      string  `json:"title"`
	Employment float64 `json:"employment"`
	MedianWage float64 `json:"median_wage"`
}

// TopOccupationCard describes the first row of the occupations view.
type TopOccupationCard struct {
	Title             string  `json:"title"`
	Employed          float64 `json:"employed"`
	EmployedDisplay   string  `json:"employed_display"`
	MedianSalary      float64 `json:"median_salary"`
	MedianSalaryLabel string  `json:"median_salary_display"`
	Badge             string  `json:"badge"`
	Empty             bool    `json:"empty"`
}

// SalaryBox is a five-number summary of the median wages of one occupation
// title across the BLS rows that carry it.
type SalaryBox struct {
	Title   string  `json:"title"`
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// OccupationsView is the "US Jobs" page.
type OccupationsView struct {
	SortBy   string            `json:"sort_by"`
	Title    string            `json:"title"`
	Rows     []OccupationRow   `json:"rows"`
	Top      TopOccupationCard `json:"top"`
	Salaries []SalaryBox       `json:"salaries"`
}

// CountryRow is the latest digital skill indicator of one country.
type CountryRow struct {
	Country string  `json:"country"`
	Period  string  `json:"period"`
	Value   float64 `json:"digital_skill_index"`
}

// CountriesView is the "World Digital Skills" page: the map holds every
// country, the table only the top N.
type CountriesView struct {
	TopN    int          `json:"top_n"`
	Options []int        `json:"options"`
	Map     []CountryRow `json:"map"`
	Table   []CountryRow `json:"table"`
}

// DigitalOccupationRow counts digital skill mentions for one O*NET code.
type DigitalOccupationRow struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Mentions int    `json:"mentions"`
}

// DigitalOccupationsView is the "O*NET Tech Skills" page.
type DigitalOccupationsView struct {
	TopN    int                    `json:"top_n"`
	Options []int                  `json:"options"`
	Title   string                 `json:"title"`
	Rows    []DigitalOccupationRow `json:"rows"`
}

// SkillsOverview is the landing page of the skills dashboard.
type SkillsOverview struct {
	TotalJobs       KPICard                `json:"total_jobs"`
	MedianAdoption  KPICard                `json:"median_digital_adoption"`
	TopDigitalJob   TextCard               `json:"top_digital_job"`
	TopOccupations  []OccupationRow        `json:"top_occupations"`
	Countries       []CountryRow           `json:"countries"`
	TopDigitalRoles []DigitalOccupationRow `json:"top_digital_occupations"`
}
