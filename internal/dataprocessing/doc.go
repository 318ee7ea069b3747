// Package dataprocessing loads the base datasets behind both dashboards.
//
// Each loader reads one source, validates its required columns and applies
// the load-time cleaning rules, so every numeric column handed to the
// analytics pipeline is non-null:
//
//   - LoadBLS reads the OEWS national workbook with excelize and drops rows
//     without a positive employment count and median wage. GroupBLS reduces it
//     to one row per occupation title.
//   - LoadITU reads the digital indicator CSV and keeps the latest observation
//     per country.
//   - LoadONET reads the tab-delimited O*NET occupation and technology skill
//     files and keeps the digital skill rows.
//   - GeneratePatients builds the seeded synthetic patient cohort.
//
// A missing required column is a fatal configuration error.
//
// # Usage
//
//	data, err := dataprocessing.LoadSkills(ctx, dataprocessing.SkillsSources{
//		ONETDir: "data/db_29_1_text",
//		ITUFile: "data/ITU_DH.csv",
//		BLSFile: "data/national_M2024_dl.xlsx",
//	}, logger)
//
//	patients, err := dataprocessing.GeneratePatients(dataprocessing.DefaultPatientOptions())
package dataprocessing
