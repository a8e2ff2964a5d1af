package api

import (
	"encoding/json"
	"fmt"
)

// DatasetRecord is the remote representation of a dataset. URLPrefix is the
// immutable identifier; the counters are maintained by the remote.
type DatasetRecord struct {
	URLPrefix     string   `json:"url_prefix" yaml:"url_prefix"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	Reference     string   `json:"reference" yaml:"reference"`
	Tags          []string `json:"tags" yaml:"tags"`
	ElementsCount int      `json:"elements_count" yaml:"elements_count"`
	CommentsCount int      `json:"comments_count" yaml:"comments_count"`
}

// DatasetUpdate carries every mutable dataset field. The prefix is never
// sent on update.
type DatasetUpdate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Reference   string   `json:"reference"`
	Tags        []string `json:"tags"`
}

// ElementRecord is the remote representation of an element's metadata.
type ElementRecord struct {
	ID          string   `json:"_id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	HTTPRef     string   `json:"http_ref" yaml:"http_ref"`
}

// ElementSummary is one entry of an element page. Pages carry the same
// fields as a single element lookup.
type ElementSummary = ElementRecord

// UnmarshalJSON accepts both "_id" and "id" for the element identifier.
func (e *ElementRecord) UnmarshalJSON(data []byte) error {
	type plain ElementRecord
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = ElementRecord(aux.plain)
	if e.ID == "" {
		e.ID = aux.AltID
	}
	return nil
}

// ElementInput is the body of an element create or metadata update.
type ElementInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	HTTPRef     string   `json:"http_ref"`
}

// decodeCreatedID reads the id returned by an element create, which is
// either a bare JSON string or an object carrying "_id" or "id".
func decodeCreatedID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id == "" {
			return "", fmt.Errorf("remote returned an empty element id")
		}
		return id, nil
	}

	var rec ElementRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("failed to parse created element id; %w", err)
	}
	if rec.ID == "" {
		return "", fmt.Errorf("remote returned no element id")
	}
	return rec.ID, nil
}
