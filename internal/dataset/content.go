package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leefowlercu/mldata/internal/api"
)

// Content is the payload of a new element: either Bytes or File.
type Content interface {
	read() ([]byte, error)
}

// Bytes is in-memory element content.
type Bytes []byte

func (b Bytes) read() ([]byte, error) { return []byte(b), nil }

// File is element content read from a local path when the element is added.
type File string

func (f File) read() ([]byte, error) {
	info, err := os.Stat(string(f))
	if err != nil {
		return nil, fmt.Errorf("%w; %w", ErrInvalidContent, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w; %s is not a regular file", ErrInvalidContent, string(f))
	}

	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("%w; %w", ErrInvalidContent, err)
	}
	return data, nil
}

type addOptions struct {
	interpret bool
}

// AddOption configures AddElement.
type AddOption func(*addOptions)

// WithoutInterpretation uploads content exactly as given, skipping the
// interpreter's Cipher.
func WithoutInterpretation() AddOption {
	return func(o *addOptions) {
		o.interpret = false
	}
}

// AddElement creates an element with the given metadata and content and
// returns it as stored remotely. The content is read before anything is sent,
// so unreadable content fails without creating an element. Unless
// WithoutInterpretation is given the content goes through the interpreter's
// Cipher exactly once.
//
// If the content upload fails after the element was created, AddElement
// returns the created element together with an error matching
// ErrContentNotStored, so the caller can retry SetContent or Delete it.
func (d *Dataset) AddElement(ctx context.Context, in api.ElementInput, content Content, opts ...AddOption) (*Element, error) {
	options := addOptions{interpret: true}
	for _, opt := range opts {
		opt(&options)
	}

	if content == nil {
		return nil, fmt.Errorf("%w; no content given", ErrInvalidContent)
	}
	data, err := content.read()
	if err != nil {
		return nil, err
	}

	id, err := d.remote.CreateElement(ctx, d.record.URLPrefix, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create element in %s; %w", d.record.URLPrefix, err)
	}

	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}

	el, err := d.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrElementNotFound) {
			return nil, fmt.Errorf("created element %s is not retrievable; %w", id, err)
		}
		return nil, err
	}

	if err := el.SetContent(ctx, data, options.interpret); err != nil {
		d.logger.Warn("element created without content",
			"prefix", d.record.URLPrefix,
			"id", id,
			"error", err)
		return el, fmt.Errorf("%w; %w", ErrContentNotStored, err)
	}

	d.logger.Debug("added element",
		"prefix", d.record.URLPrefix,
		"id", id,
		"bytes", len(data),
		"interpreter", d.interp.Name())

	return el, nil
}
