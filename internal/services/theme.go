package services

import "pulseboard/pkg/contracts/domain"

const themeFont = "'Segoe UI', 'Roboto', 'Arial', sans-serif"

// prism is the categorical color sequence shared by both modes.
var prism = []string{
	"rgb(95, 70, 144)",
	"rgb(29, 105, 150)",
	"rgb(56, 166, 165)",
	"rgb(15, 133, 84)",
	"rgb(115, 175, 72)",
	"rgb(237, 173, 8)",
	"rgb(225, 124, 5)",
	"rgb(204, 80, 62)",
	"rgb(148, 52, 110)",
	"rgb(111, 64, 112)",
	"rgb(102, 102, 102)",
}

// Theme returns the healthcare palette for the requested display mode.
func Theme(dark bool) domain.Theme {
	t := domain.Theme{
		Mode:       domain.ThemeLight,
		Background: "#f4f8fb",
		Card:       "#fff",
		Header:     "#0A2540",
		Accent:     "#12151d",
		KPIValue:   "#21243d",
		Text:       "#263238",
		Grid:       "#e0e7ef",
	}
	if dark {
		t = domain.Theme{
			Mode:       domain.ThemeDark,
			Background: "#12151d",
			Card:       "#23272f",
			Header:     "#38bdf8",
			Accent:     "#fff",
			KPIValue:   "#fff",
			Text:       "#f5f5f5",
			Grid:       "#23272e",
		}
	}
	t.FontFamily = themeFont
	t.ColorSequence = append([]string(nil), prism...)
	return t
}
