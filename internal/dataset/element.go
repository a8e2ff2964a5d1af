package dataset

import (
	"context"
	"fmt"
	"slices"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/interpreter"
)

// Element is one record of a Dataset. Metadata is loaded when the Element
// is created; content is only fetched by Content.
type Element struct {
	record  api.ElementRecord
	dataset *Dataset
	interp  interpreter.Interpreter
}

// ID returns the remote element id.
func (e *Element) ID() string { return e.record.ID }

// Title returns the element title.
func (e *Element) Title() string { return e.record.Title }

// Description returns the element description.
func (e *Element) Description() string { return e.record.Description }

// Tags returns a copy of the element tags.
func (e *Element) Tags() []string { return slices.Clone(e.record.Tags) }

// HTTPRef returns the element's external reference URL.
func (e *Element) HTTPRef() string { return e.record.HTTPRef }

// Dataset returns the dataset the element belongs to.
func (e *Element) Dataset() *Dataset { return e.dataset }

// Record returns a copy of the element metadata.
func (e *Element) Record() api.ElementRecord {
	rec := e.record
	rec.Tags = slices.Clone(e.record.Tags)
	return rec
}

// SetTitle changes the title locally; call Update to store it.
func (e *Element) SetTitle(title string) { e.record.Title = title }

// SetDescription changes the description locally; call Update to store it.
func (e *Element) SetDescription(description string) { e.record.Description = description }

// SetTags replaces the tags locally; call Update to store them.
func (e *Element) SetTags(tags []string) { e.record.Tags = slices.Clone(tags) }

// SetHTTPRef changes the reference URL locally; call Update to store it.
func (e *Element) SetHTTPRef(ref string) { e.record.HTTPRef = ref }

func (e *Element) prefix() string { return e.dataset.record.URLPrefix }

// Content downloads the element content. With interpret set the stored bytes
// are passed through the interpreter's Decipher; otherwise they are returned
// as stored.
func (e *Element) Content(ctx context.Context, interpret bool) ([]byte, error) {
	data, err := e.dataset.remote.GetElementContent(ctx, e.prefix(), e.record.ID)
	if err != nil {
		return nil, e.dataset.elementError("fetch content of", e.record.ID, err)
	}
	if !interpret {
		return data, nil
	}

	plain, err := e.interp.Decipher(data)
	if err != nil {
		return nil, fmt.Errorf("failed to interpret content of element %s; %w", e.record.ID, err)
	}
	return plain, nil
}

// SetContent uploads data as the element content. With interpret set the
// bytes are passed through the interpreter's Cipher first.
func (e *Element) SetContent(ctx context.Context, data []byte, interpret bool) error {
	if interpret {
		stored, err := e.interp.Cipher(data)
		if err != nil {
			return fmt.Errorf("failed to interpret content of element %s; %w", e.record.ID, err)
		}
		data = stored
	}

	if err := e.dataset.remote.PutElementContent(ctx, e.prefix(), e.record.ID, data); err != nil {
		return e.dataset.elementError("upload content of", e.record.ID, err)
	}
	return nil
}

// Update stores the element metadata on the remote.
func (e *Element) Update(ctx context.Context) error {
	in := api.ElementInput{
		Title:       e.record.Title,
		Description: e.record.Description,
		Tags:        slices.Clone(e.record.Tags),
		HTTPRef:     e.record.HTTPRef,
	}
	if err := e.dataset.remote.UpdateElement(ctx, e.prefix(), e.record.ID, in); err != nil {
		return e.dataset.elementError("update", e.record.ID, err)
	}
	return nil
}

// Refresh reloads the element metadata from the remote.
func (e *Element) Refresh(ctx context.Context) error {
	rec, err := e.dataset.remote.GetElement(ctx, e.prefix(), e.record.ID)
	if err != nil {
		return e.dataset.elementError("refresh", e.record.ID, err)
	}
	id := e.record.ID
	e.record = *rec
	e.record.ID = id
	e.record.Tags = slices.Clone(rec.Tags)
	return nil
}
