package domain

// Theme modes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme is the presenter palette for one display mode. It never affects data.
type Theme struct {
	Mode          string   `json:"mode"`
	Background    string   `json:"background"`
	Card          string   `json:"card"`
	Header        string   `json:"header"`
	Accent        string   `json:"accent"`
	KPIValue      string   `json:"kpi_value"`
	Text          string   `json:"text"`
	Grid          string   `json:"grid"`
	FontFamily    string   `json:"font_family"`
	ColorSequence []string `json:"color_sequence"`
}
