// Package formatters renders an export metadata index in the supported
// metadata file formats.
package formatters

// Entry is the metadata of one exported element.
type Entry struct {
	FileName    string
	ID          string
	Title       string
	Description string
	HTTPRef     string
	Tags        []string
}

// Index is the ordered metadata of an export, one entry per content file.
type Index []Entry

// Formatter formats an export index into a metadata file.
type Formatter interface {
	// Format converts the index to the output format.
	Format(index Index) ([]byte, error)

	// Name returns the formatter name.
	Name() string

	// ContentType returns the MIME content type.
	ContentType() string

	// FileExtension returns the typical file extension.
	FileExtension() string
}

// record is the per-file value written by the keyed formats.
type record struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	HTTPRef     string   `json:"http_ref" yaml:"http_ref"`
	Tags        []string `json:"tags" yaml:"tags"`
}

func toRecord(e Entry) record {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return record{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		HTTPRef:     e.HTTPRef,
		Tags:        tags,
	}
}
