// Package exporter serializes filtered datasets for download.
//
// Two formats are supported, both with a header row and both preserving the
// column names, column order and row order of the dataset they are given:
//
//   - CSV: UTF-8, comma delimited (WriteCSV)
//   - XLSX: a single worksheet written through the excelize stream writer (WriteXLSX)
//
// Export wraps either writer and returns an Artifact carrying the bytes, the
// suggested filename and its content type. SaveArtifact persists an artifact
// for the command line exporter.
//
// Example usage:
//
//	artifact, err := exporter.Export(subset, exporter.FormatXLSX, "filtered_healthcare_data")
//	if err != nil {
//		return err
//	}
//	path, err := exporter.SaveArtifact("exports", artifact)
package exporter
