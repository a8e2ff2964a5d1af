// Package export writes a local mirror of a dataset: a metadata index file
// and one raw content file per element under content/.
package export

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/export/formatters"
	"github.com/leefowlercu/mldata/internal/metrics"
)

// ContentDir is the folder, relative to the export root, holding content files.
const ContentDir = "content"

// MetadataBaseName is the metadata file name without extension.
const MetadataBaseName = "metadata"

// ErrUnsupportedFormat is returned before any I/O when the requested metadata
// format is not registered.
var ErrUnsupportedFormat = errors.New("unsupported metadata format")

// Source is the collection being exported. *dataset.Dataset satisfies it.
type Source interface {
	All(ctx context.Context) iter.Seq2[*dataset.Element, error]
	Get(ctx context.Context, id string) (*dataset.Element, error)
}

// Options configures an export.
type Options struct {
	// Format is the metadata format name (json, csv, yaml, toml).
	Format string

	// Extension is appended to each element id to form its file name.
	// A leading "." is ignored; empty means no extension.
	Extension string

	// Progress receives advisory progress updates; nil disables them.
	Progress Progress
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{Format: "json"}
}

// Failure records an element whose content could not be exported.
type Failure struct {
	FileName string
	ID       string
	Err      error
}

// Result describes a finished export.
type Result struct {
	Folder       string        `json:"folder"`
	MetadataFile string        `json:"metadata_file"`
	Format       string        `json:"format"`
	Elements     int           `json:"elements"`
	Written      int           `json:"written"`
	Bytes        int64         `json:"bytes"`
	Failures     []Failure     `json:"-"`
	Duration     time.Duration `json:"duration"`
}

// PartialExportError is returned with the Result when some content files
// could not be written. The metadata file lists every element regardless.
type PartialExportError struct {
	Total    int
	Failures []Failure
}

func (e *PartialExportError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("export incomplete; 1 of %d elements failed (%s: %v)", e.Total, f.FileName, f.Err)
	}
	return fmt.Sprintf("export incomplete; %d of %d elements failed", len(e.Failures), e.Total)
}

// Unwrap returns the individual failure causes.
func (e *PartialExportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Exporter writes local mirrors of a Source.
type Exporter struct {
	formatters map[string]formatters.Formatter
	logger     *slog.Logger
}

// NewExporter creates an exporter with the default formatters registered.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		formatters: make(map[string]formatters.Formatter),
		logger:     slog.Default(),
	}

	e.RegisterFormatter(formatters.NewJSONFormatter())
	e.RegisterFormatter(formatters.NewCSVFormatter())
	e.RegisterFormatter(formatters.NewYAMLFormatter())
	e.RegisterFormatter(formatters.NewTOMLFormatter())

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegisterFormatter registers a formatter under its name.
func (e *Exporter) RegisterFormatter(f formatters.Formatter) {
	e.formatters[f.Name()] = f
}

// Formats returns the registered format names, sorted.
func (e *Exporter) Formats() []string {
	names := make([]string, 0, len(e.formatters))
	for name := range e.formatters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NormalizeExtension strips surrounding whitespace and a leading ".".
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}

// FileName returns the content file name of an element id.
func FileName(id, ext string) string {
	ext = NormalizeExtension(ext)
	if ext == "" {
		return id
	}
	return id + "." + ext
}

// SaveToFolder exports src into folder.
//
// The remote is listed exactly once to build the metadata index, which is
// written before any content is fetched. Content is then fetched per index
// entry, raw as stored (not deciphered). Elements whose content cannot be
// fetched or written are skipped and reported through a *PartialExportError
// returned together with the Result.
func (e *Exporter) SaveToFolder(ctx context.Context, src Source, folder string, opts Options) (*Result, error) {
	start := time.Now()

	formatter, ok := e.formatters[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, opts.Format, strings.Join(e.Formats(), ", "))
	}
	ext := NormalizeExtension(opts.Extension)
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress{}
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export folder; %w", err)
	}

	index, err := collect(ctx, src, ext)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Folder:       folder,
		MetadataFile: filepath.Join(folder, MetadataBaseName+formatter.FileExtension()),
		Format:       formatter.Name(),
		Elements:     len(index),
	}

	data, err := formatter.Format(index)
	if err != nil {
		return nil, fmt.Errorf("failed to format metadata; %w", err)
	}
	if err := os.WriteFile(result.MetadataFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file; %w", err)
	}
	e.logger.Debug("wrote export metadata", "file", result.MetadataFile, "elements", len(index))

	contentDir := filepath.Join(folder, ContentDir)
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content folder; %w", err)
	}

	progress.Start(len(index))
	for _, entry := range index {
		if err := ctx.Err(); err != nil {
			progress.Finish()
			result.Duration = time.Since(start)
			metrics.RecordExport(result.Format, result.Written, len(result.Failures), result.Duration, err)
			return result, fmt.Errorf("export cancelled after %d of %d elements; %w", result.Written, len(index), err)
		}

		n, err := exportContent(ctx, src, contentDir, entry)
		if err != nil {
			e.logger.Warn("failed to export element content", "id", entry.ID, "error", err)
			result.Failures = append(result.Failures, Failure{FileName: entry.FileName, ID: entry.ID, Err: err})
		} else {
			result.Written++
			result.Bytes += n
		}
		progress.Advance(entry.FileName)
	}
	progress.Finish()

	result.Duration = time.Since(start)

	var exportErr error
	if len(result.Failures) > 0 {
		exportErr = &PartialExportError{Total: len(index), Failures: result.Failures}
	}
	metrics.RecordExport(result.Format, result.Written, len(result.Failures), result.Duration, exportErr)

	e.logger.Info("export finished",
		"folder", folder,
		"format", result.Format,
		"elements", result.Elements,
		"written", result.Written,
		"failed", len(result.Failures),
		"duration", result.Duration)

	return result, exportErr
}

// collect performs the single listing pass and builds the ordered index. An
// id listed twice keeps its first position and its latest metadata.
func collect(ctx context.Context, src Source, ext string) (formatters.Index, error) {
	var index formatters.Index
	positions := make(map[string]int)

	for el, err := range src.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to collect metadata; %w", err)
		}

		entry := formatters.Entry{
			FileName:    FileName(el.ID(), ext),
			ID:          el.ID(),
			Title:       el.Title(),
			Description: el.Description(),
			HTTPRef:     el.HTTPRef(),
			Tags:        el.Tags(),
		}
		if i, seen := positions[entry.FileName]; seen {
			index[i] = entry
			continue
		}
		positions[entry.FileName] = len(index)
		index = append(index, entry)
	}

	return index, nil
}

// exportContent fetches one element's stored content and writes it under dir.
func exportContent(ctx context.Context, src Source, dir string, entry formatters.Entry) (int64, error) {
	if !safeFileName(entry.FileName) {
		return 0, fmt.Errorf("unsafe file name %q", entry.FileName)
	}

	el, err := src.Get(ctx, entry.ID)
	if err != nil {
		return 0, err
	}
	data, err := el.Content(ctx, false)
	if err != nil {
		return 0, err
	}

	return writeFile(filepath.Join(dir, entry.FileName), data)
}

func writeFile(path string, data []byte) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s; %w", path, err)
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write %s; %w", path, err)
	}
	if err := f.Close(); err != nil {
		return int64(n), fmt.Errorf("failed to close %s; %w", path, err)
	}
	return int64(n), nil
}

// safeFileName rejects names that would escape the content folder.
func safeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
