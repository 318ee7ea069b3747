package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"pulseboard/internal/dataset"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a user supplied name to a Format. Empty means def.
func ParseFormat(name string, def Format) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return def, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Artifact is a serialized export ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Format      Format
	Rows        int
	Data        []byte
}

// Export serializes every column and row of ds, in order, and suggests
// basename plus the format extension as the filename.
func Export(ds *dataset.Dataset, format Format, basename string) (*Artifact, error) {
	var buf bytes.Buffer

	switch format {
	case FormatCSV:
		err := WriteCSV(&buf, WriteOptions{Headers: ds.ColumnNames(), Records: ds.Records()})
		if err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	case FormatXLSX:
		if err := WriteXLSX(&buf, DefaultSheet, ds); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return &Artifact{
		Filename:    basename + "." + string(format),
		ContentType: format.ContentType(),
		Format:      format,
		Rows:        ds.Len(),
		Data:        buf.Bytes(),
	}, nil
}
