// Package dataset exposes a remote dataset as a local object: metadata with
// cached counters, keyed element operations, and lazy full scans over the
// paginated element listing.
//
// A Dataset is not safe for concurrent use. Full scans give no consistency
// guarantee when the remote collection is mutated while they run.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/interpreter"
	"github.com/leefowlercu/mldata/internal/pagination"
)

// AllPages makes Keys walk every page.
const AllPages = -1

var (
	// ErrElementNotFound is returned when the remote reports that an element
	// does not exist. Transport failures are never reported this way.
	ErrElementNotFound = errors.New("element not found")

	// ErrInvalidContent is returned when element content cannot be read.
	ErrInvalidContent = errors.New("invalid element content")

	// ErrContentNotStored is returned by AddElement when the element was
	// created but its content upload failed.
	ErrContentNotStored = errors.New("element created without content")
)

// Record is the dataset metadata as stored remotely.
type Record = api.DatasetRecord

// Remote is the API surface a Dataset needs. *api.Client satisfies it.
type Remote interface {
	GetDataset(ctx context.Context, prefix string) (*api.DatasetRecord, error)
	CreateDataset(ctx context.Context, rec api.DatasetRecord) (*api.DatasetRecord, error)
	UpdateDataset(ctx context.Context, prefix string, upd api.DatasetUpdate) error
	ListElements(ctx context.Context, prefix string, page int) ([]api.ElementSummary, error)
	CreateElement(ctx context.Context, prefix string, in api.ElementInput) (string, error)
	GetElement(ctx context.Context, prefix, id string) (*api.ElementRecord, error)
	UpdateElement(ctx context.Context, prefix, id string, in api.ElementInput) error
	DeleteElement(ctx context.Context, prefix, id string) error
	GetElementContent(ctx context.Context, prefix, id string) ([]byte, error)
	PutElementContent(ctx context.Context, prefix, id string, data []byte) error
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithInterpreter sets the interpreter applied to element content. A nil
// interpreter selects Identity.
func WithInterpreter(in interpreter.Interpreter) Option {
	return func(d *Dataset) {
		d.interp = interpreter.OrIdentity(in)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dataset) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dataset is a remote dataset identified by its URL prefix.
//
// ElementsCount and CommentsCount are cached from the last Refresh (or the
// record the Dataset was built from) and go stale as soon as the remote
// changes.
type Dataset struct {
	remote Remote
	record Record
	interp interpreter.Interpreter
	logger *slog.Logger
}

// New creates a local Dataset for prefix without contacting the remote. Use
// Create to store it or Refresh to load its remote state.
func New(remote Remote, prefix string, opts ...Option) *Dataset {
	return FromRecord(remote, Record{URLPrefix: prefix}, opts...)
}

// FromRecord creates a Dataset from a record already fetched from the remote.
func FromRecord(remote Remote, rec Record, opts ...Option) *Dataset {
	d := &Dataset{
		remote: remote,
		record: rec,
		interp: interpreter.Identity{},
		logger: slog.Default(),
	}
	d.record.Tags = slices.Clone(rec.Tags)

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Open creates a Dataset for prefix and loads its remote state.
func Open(ctx context.Context, remote Remote, prefix string, opts ...Option) (*Dataset, error) {
	d := New(remote, prefix, opts...)
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// URLPrefix returns the immutable dataset identifier.
func (d *Dataset) URLPrefix() string { return d.record.URLPrefix }

// Title returns the dataset title.
func (d *Dataset) Title() string { return d.record.Title }

// Description returns the dataset description.
func (d *Dataset) Description() string { return d.record.Description }

// Reference returns the dataset reference, such as a citation or URL.
func (d *Dataset) Reference() string { return d.record.Reference }

// Tags returns a copy of the dataset tags.
func (d *Dataset) Tags() []string { return slices.Clone(d.record.Tags) }

// ElementsCount returns the cached element count. It is only accurate
// immediately after Refresh.
func (d *Dataset) ElementsCount() int { return d.record.ElementsCount }

// CommentsCount returns the cached comment count. It is only accurate
// immediately after Refresh.
func (d *Dataset) CommentsCount() int { return d.record.CommentsCount }

// Len returns the cached element count.
func (d *Dataset) Len() int { return d.record.ElementsCount }

// Record returns a copy of the dataset record.
func (d *Dataset) Record() Record {
	rec := d.record
	rec.Tags = slices.Clone(d.record.Tags)
	return rec
}

// Interpreter returns the interpreter applied to element content.
func (d *Dataset) Interpreter() interpreter.Interpreter { return d.interp }

// SetTitle changes the title locally; call Update to store it.
func (d *Dataset) SetTitle(title string) { d.record.Title = title }

// SetDescription changes the description locally; call Update to store it.
func (d *Dataset) SetDescription(description string) { d.record.Description = description }

// SetReference changes the reference locally; call Update to store it.
func (d *Dataset) SetReference(reference string) { d.record.Reference = reference }

// SetTags replaces the tags locally; call Update to store them.
func (d *Dataset) SetTags(tags []string) { d.record.Tags = slices.Clone(tags) }

// SetInterpreter replaces the interpreter. Elements hydrated afterwards
// inherit the new interpreter; elements already handed out keep theirs.
func (d *Dataset) SetInterpreter(in interpreter.Interpreter) { d.interp = interpreter.OrIdentity(in) }

// String renders the dataset record.
func (d *Dataset) String() string {
	data, err := json.Marshal(d.record)
	if err != nil {
		return "Dataset(" + d.record.URLPrefix + ")"
	}
	return string(data)
}

// Create stores the dataset on the remote and adopts the stored record.
func (d *Dataset) Create(ctx context.Context) error {
	created, err := d.remote.CreateDataset(ctx, d.Record())
	if err != nil {
		return fmt.Errorf("failed to create dataset %s; %w", d.record.URLPrefix, err)
	}
	d.adopt(created)
	d.logger.Info("created dataset", "prefix", d.record.URLPrefix)
	return nil
}

// Refresh reloads metadata and counters from the remote. The prefix is
// never reassigned.
func (d *Dataset) Refresh(ctx context.Context) error {
	rec, err := d.remote.GetDataset(ctx, d.record.URLPrefix)
	if err != nil {
		return fmt.Errorf("failed to refresh dataset %s; %w", d.record.URLPrefix, err)
	}
	d.adopt(rec)
	return nil
}

func (d *Dataset) adopt(rec *api.DatasetRecord) {
	d.record.Title = rec.Title
	d.record.Description = rec.Description
	d.record.Reference = rec.Reference
	d.record.Tags = slices.Clone(rec.Tags)
	d.record.ElementsCount = rec.ElementsCount
	d.record.CommentsCount = rec.CommentsCount
}

// Update sends every mutable field to the remote. Concurrent updates from
// other clients are overwritten (last writer wins).
func (d *Dataset) Update(ctx context.Context) error {
	upd := api.DatasetUpdate{
		Title:       d.record.Title,
		Description: d.record.Description,
		Reference:   d.record.Reference,
		Tags:        slices.Clone(d.record.Tags),
	}
	if err := d.remote.UpdateDataset(ctx, d.record.URLPrefix, upd); err != nil {
		return fmt.Errorf("failed to update dataset %s; %w", d.record.URLPrefix, err)
	}
	return nil
}

// Get fetches one element's metadata. It returns ErrElementNotFound only
// when the remote reports the element does not exist.
func (d *Dataset) Get(ctx context.Context, id string) (*Element, error) {
	rec, err := d.remote.GetElement(ctx, d.record.URLPrefix, id)
	if err != nil {
		return nil, d.elementError("get", id, err)
	}
	return d.hydrate(*rec), nil
}

// Delete removes an element and refreshes the dataset counters.
func (d *Dataset) Delete(ctx context.Context, id string) error {
	if err := d.remote.DeleteElement(ctx, d.record.URLPrefix, id); err != nil {
		return d.elementError("delete", id, err)
	}
	d.logger.Debug("deleted element", "prefix", d.record.URLPrefix, "id", id)
	return d.Refresh(ctx)
}

func (d *Dataset) elementError(op, id string, err error) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("%w; %s in %s", ErrElementNotFound, id, d.record.URLPrefix)
	}
	return fmt.Errorf("failed to %s element %s; %w", op, id, err)
}

func (d *Dataset) hydrate(rec api.ElementRecord) *Element {
	rec.Tags = slices.Clone(rec.Tags)
	return &Element{record: rec, dataset: d, interp: d.interp}
}

func (d *Dataset) fetchPage(ctx context.Context, page int) ([]api.ElementSummary, error) {
	return d.remote.ListElements(ctx, d.record.URLPrefix, page)
}

// Elements returns a new single-pass iterator over every element. Each call
// returns an independent iterator.
func (d *Dataset) Elements() *ElementIterator {
	return &ElementIterator{dataset: d, pages: pagination.New(d.fetchPage)}
}

// All returns a range-over-func sequence over every element. Iteration stops
// after the first error.
func (d *Dataset) All(ctx context.Context) iter.Seq2[*Element, error] {
	return d.Elements().All(ctx)
}

// Keys returns element ids. With page set to AllPages every page is walked;
// otherwise exactly that page is fetched.
func (d *Dataset) Keys(ctx context.Context, page int) ([]string, error) {
	if page == AllPages {
		it := pagination.New(d.fetchPage)
		var keys []string
		for summary, err := range it.All(ctx) {
			if err != nil {
				return keys, fmt.Errorf("failed to list element ids; %w", err)
			}
			keys = append(keys, summary.ID)
		}
		return keys, nil
	}

	if page < 0 {
		return nil, fmt.Errorf("invalid page %d", page)
	}

	summaries, err := d.fetchPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list element ids; %w", err)
	}
	keys := make([]string, 0, len(summaries))
	for _, s := range summaries {
		keys = append(keys, s.ID)
	}
	return keys, nil
}

// ElementIterator lazily walks every element of a Dataset, hydrating each
// page entry into an Element without fetching content.
type ElementIterator struct {
	dataset *Dataset
	pages   *pagination.Iterator[api.ElementSummary]
}

// Next returns the next element, false when exhausted, or the error that
// stopped the iteration.
func (it *ElementIterator) Next(ctx context.Context) (*Element, bool, error) {
	summary, ok, err := it.pages.Next(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list elements of %s; %w", it.dataset.record.URLPrefix, err)
	}
	if !ok {
		return nil, false, nil
	}
	return it.dataset.hydrate(summary), true, nil
}

// Pages returns how many pages have been fetched.
func (it *ElementIterator) Pages() int { return it.pages.Pages() }

// All adapts the iterator to a range-over-func sequence.
func (it *ElementIterator) All(ctx context.Context) iter.Seq2[*Element, error] {
	return func(yield func(*Element, error) bool) {
		for {
			el, ok, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(el, nil) {
				return
			}
		}
	}
}
