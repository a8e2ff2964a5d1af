package formatters

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonIndent matches the four-space layout of existing metadata.json mirrors.
const jsonIndent = "    "

// JSONFormatter writes a single object mapping each file name to its
// element metadata, in index order.
type JSONFormatter struct {
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{pretty: true}
}

// NewCompactJSONFormatter creates a JSON formatter without indentation.
func NewCompactJSONFormatter() *JSONFormatter {
	return &JSONFormatter{pretty: false}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// ContentType returns the MIME content type.
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// FileExtension returns the typical file extension.
func (f *JSONFormatter) FileExtension() string {
	return ".json"
}

// Format renders the index. encoding/json sorts map keys, so the object is
// assembled by hand to keep index order.
func (f *JSONFormatter) Format(index Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range index {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file name; %w", err)
		}
		value, err := json.Marshal(toRecord(e))
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %s; %w", e.FileName, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	if !f.pretty {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", jsonIndent); err != nil {
		return nil, fmt.Errorf("failed to indent JSON; %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
