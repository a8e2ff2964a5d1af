package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/leefowlercu/mldata/internal/metrics"
)

// ListElements fetches page number page (zero-based) of the dataset's
// element summaries. Page size is decided by the remote; an empty page means
// there are no further elements. Page 0 is requested without a query
// parameter.
func (c *Client) ListElements(ctx context.Context, prefix string, page int) ([]ElementSummary, error) {
	path := elementsPath(prefix)
	if page > 0 {
		path += "?page=" + strconv.Itoa(page)
	}

	var summaries []ElementSummary
	if err := c.doJSON(ctx, http.MethodGet, path, "elements", nil, &summaries); err != nil {
		return nil, err
	}

	metrics.PagesFetchedTotal.Inc()
	c.logger.Debug("fetched element page", "prefix", prefix, "page", page, "count", len(summaries))

	return summaries, nil
}

// CreateElement creates element metadata and returns the new element id.
func (c *Client) CreateElement(ctx context.Context, prefix string, in ElementInput) (string, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, elementsPath(prefix), "elements", in, &raw); err != nil {
		return "", err
	}
	return decodeCreatedID(raw)
}

// GetElement fetches one element's metadata.
func (c *Client) GetElement(ctx context.Context, prefix, id string) (*ElementRecord, error) {
	var rec ElementRecord
	if err := c.doJSON(ctx, http.MethodGet, elementPath(prefix, id), "element", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateElement replaces an element's metadata.
func (c *Client) UpdateElement(ctx context.Context, prefix, id string, in ElementInput) error {
	return c.doJSON(ctx, http.MethodPatch, elementPath(prefix, id), "element", in, nil)
}

// DeleteElement removes an element and its content.
func (c *Client) DeleteElement(ctx context.Context, prefix, id string) error {
	return c.doJSON(ctx, http.MethodDelete, elementPath(prefix, id), "element", nil, nil)
}

// GetElementContent downloads an element's stored content bytes.
func (c *Client) GetElementContent(ctx context.Context, prefix, id string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, elementPath(prefix, id)+"/content", "content", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read element content; %w", err)
	}

	metrics.RecordContentBytes("down", len(data))
	return data, nil
}

// PutElementContent uploads data as the element's stored content, replacing
// any previous content.
func (c *Client) PutElementContent(ctx context.Context, prefix, id string, data []byte) error {
	resp, err := c.do(ctx, http.MethodPut, elementPath(prefix, id)+"/content", "content",
		bytes.NewReader(data), "application/octet-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	metrics.RecordContentBytes("up", len(data))
	return nil
}
