package formatters

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFormatter writes an array of tables, one per file, in index order.
type TOMLFormatter struct{}

// NewTOMLFormatter creates a new TOML formatter.
func NewTOMLFormatter() *TOMLFormatter {
	return &TOMLFormatter{}
}

// Name returns the formatter name.
func (f *TOMLFormatter) Name() string {
	return "toml"
}

// ContentType returns the MIME content type.
func (f *TOMLFormatter) ContentType() string {
	return "application/toml"
}

// FileExtension returns the typical file extension.
func (f *TOMLFormatter) FileExtension() string {
	return ".toml"
}

type tomlEntry struct {
	FileName    string   `toml:"file_name"`
	ID          string   `toml:"id"`
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	HTTPRef     string   `toml:"http_ref"`
	Tags        []string `toml:"tags"`
}

type tomlDocument struct {
	Elements []tomlEntry `toml:"elements"`
}

// Format renders the index.
func (f *TOMLFormatter) Format(index Index) ([]byte, error) {
	doc := tomlDocument{Elements: make([]tomlEntry, 0, len(index))}
	for _, e := range index {
		r := toRecord(e)
		doc.Elements = append(doc.Elements, tomlEntry{
			FileName:    e.FileName,
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			HTTPRef:     r.HTTPRef,
			Tags:        r.Tags,
		})
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TOML; %w", err)
	}
	return data, nil
}
