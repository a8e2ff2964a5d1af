package api

import (
	"context"
	"net/http"
)

// GetDataset fetches the dataset record for prefix.
func (c *Client) GetDataset(ctx context.Context, prefix string) (*DatasetRecord, error) {
	var rec DatasetRecord
	if err := c.doJSON(ctx, http.MethodGet, datasetPath(prefix), "dataset", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateDataset creates a dataset and returns the stored record.
func (c *Client) CreateDataset(ctx context.Context, rec DatasetRecord) (*DatasetRecord, error) {
	var created DatasetRecord
	if err := c.doJSON(ctx, http.MethodPost, "/datasets", "datasets", rec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDataset replaces every mutable field of the dataset.
func (c *Client) UpdateDataset(ctx context.Context, prefix string, upd DatasetUpdate) error {
	return c.doJSON(ctx, http.MethodPatch, datasetPath(prefix), "dataset", upd, nil)
}
