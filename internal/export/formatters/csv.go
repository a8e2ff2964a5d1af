package formatters

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// TagSeparator joins element tags in a single CSV cell.
const TagSeparator = ";"

var csvHeader = []string{"file_name", "id", "title", "description", "http_ref", "tags"}

// CSVFormatter writes one row per file with a header row.
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Name returns the formatter name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

// ContentType returns the MIME content type.
func (f *CSVFormatter) ContentType() string {
	return "text/csv"
}

// FileExtension returns the typical file extension.
func (f *CSVFormatter) FileExtension() string {
	return ".csv"
}

// Format renders the index with RFC 4180 quoting and CRLF line endings.
func (f *CSVFormatter) Format(index Index) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header; %w", err)
	}
	for _, e := range index {
		row := []string{
			e.FileName,
			e.ID,
			e.Title,
			e.Description,
			e.HTTPRef,
			strings.Join(e.Tags, TagSeparator),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for %s; %w", e.FileName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV; %w", err)
	}
	return buf.Bytes(), nil
}
