// Package cmdutil holds helpers shared by the CLI commands: building the API
// client and datasets from configuration, and rendering output.
package cmdutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/config"
	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/interpreter"
)

// ResolvePath expands "~" and returns an absolute, cleaned path. Empty input
// returns an empty string.
func ResolvePath(path string) (string, error) {
	expanded := config.ExpandHome(path)
	if expanded == "" {
		return "", nil
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// NewClient builds an API client from the loaded configuration.
func NewClient(opts ...api.Option) (*api.Client, error) {
	client, err := api.NewFromConfig(config.Get(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client; %w", err)
	}
	return client, nil
}

// DatasetMode selects what OpenDataset prepares.
type DatasetMode int

const (
	// MetadataOnly skips building the content interpreter, so commands that
	// never touch content work without key material.
	MetadataOnly DatasetMode = iota

	// WithContent builds the configured interpreter.
	WithContent
)

// NewDataset returns a local Dataset for prefix, namespaced with the
// configured owner, without contacting the remote.
func NewDataset(prefix string, mode DatasetMode) (*dataset.Dataset, error) {
	client, err := NewClient()
	if err != nil {
		return nil, err
	}

	var opts []dataset.Option
	if mode == WithContent {
		interp, err := interpreter.FromConfig(config.Get().Interpreter)
		if err != nil {
			return nil, fmt.Errorf("failed to build content interpreter; %w", err)
		}
		opts = append(opts, dataset.WithInterpreter(interp))
	}

	return dataset.New(client, client.ResolvePrefix(prefix), opts...), nil
}

// OpenDataset is NewDataset followed by loading the remote record.
func OpenDataset(ctx context.Context, prefix string, mode DatasetMode) (*dataset.Dataset, error) {
	ds, err := NewDataset(prefix, mode)
	if err != nil {
		return nil, err
	}
	if err := ds.Refresh(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

// Output formats accepted by Render.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Render writes v to w as YAML or indented JSON.
func Render(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q; use yaml or json", format)
	}
}
