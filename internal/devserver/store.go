package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/fsutil"
	"github.com/leefowlercu/mldata/internal/metrics"
)

var (
	// ErrDatasetNotFound is returned when a dataset prefix is not stored.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrElementNotFound is returned when an element id is not stored in the
	// requested dataset.
	ErrElementNotFound = errors.New("element not found")

	// ErrDatasetExists is returned when creating a dataset whose prefix is taken.
	ErrDatasetExists = errors.New("dataset already exists")
)

// Store persists datasets, elements and element content in SQLite.
type Store struct {
	db *sql.DB
}

// ContentInfo describes stored element content.
type ContentInfo struct {
	Hash string
	Size int
}

// Open opens or creates the store at dbPath and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory; %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database; %w", err)
	}
	// A single connection keeps PRAGMAs in effect and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys; %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode; %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations; %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateDataset stores a new dataset. Counters in rec are ignored except
// comments_count.
func (s *Store) CreateDataset(ctx context.Context, rec api.DatasetRecord) error {
	prefix := strings.Trim(rec.URLPrefix, "/")
	if prefix == "" {
		return fmt.Errorf("url_prefix is required")
	}

	tags, err := encodeTags(rec.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets (url_prefix, title, description, reference, tags_json, comments_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_prefix) DO NOTHING`,
		prefix, rec.Title, rec.Description, rec.Reference, tags, rec.CommentsCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset; %w", err)
	}

	// An existing prefix inserts nothing.
	return requireAffected(result, ErrDatasetExists)
}

// GetDataset returns the dataset record with its current element count.
func (s *Store) GetDataset(ctx context.Context, prefix string) (*api.DatasetRecord, error) {
	var rec api.DatasetRecord
	var tags string
	err := s.db.QueryRowContext(ctx, `
		SELECT d.url_prefix, d.title, d.description, d.reference, d.tags_json, d.comments_count,
			(SELECT COUNT(*) FROM elements e WHERE e.dataset = d.url_prefix)
		FROM datasets d WHERE d.url_prefix = ?`,
		prefix,
	).Scan(&rec.URLPrefix, &rec.Title, &rec.Description, &rec.Reference, &tags, &rec.CommentsCount, &rec.ElementsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset; %w", err)
	}

	if rec.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateDataset replaces every mutable field of a dataset.
func (s *Store) UpdateDataset(ctx context.Context, prefix string, upd api.DatasetUpdate) error {
	tags, err := encodeTags(upd.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE datasets
		SET title = ?, description = ?, reference = ?, tags_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE url_prefix = ?`,
		upd.Title, upd.Description, upd.Reference, tags, prefix,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset; %w", err)
	}
	return requireAffected(result, ErrDatasetNotFound)
}

// ListElements returns up to limit elements of a dataset in insertion order,
// skipping the first offset.
func (s *Store) ListElements(ctx context.Context, prefix string, offset, limit int) ([]api.ElementRecord, error) {
	if err := s.datasetExists(ctx, prefix); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, tags_json, http_ref
		FROM elements WHERE dataset = ?
		ORDER BY seq LIMIT ? OFFSET ?`,
		prefix, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements; %w", err)
	}
	defer rows.Close()

	elements := []api.ElementRecord{}
	for rows.Next() {
		var rec api.ElementRecord
		var tags string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &tags, &rec.HTTPRef); err != nil {
			return nil, fmt.Errorf("failed to scan element; %w", err)
		}
		if rec.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		elements = append(elements, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elements; %w", err)
	}

	return elements, nil
}

// CreateElement stores element metadata and returns its new id.
func (s *Store) CreateElement(ctx context.Context, prefix string, in api.ElementInput) (string, error) {
	if err := s.datasetExists(ctx, prefix); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate element id; %w", err)
	}

	tags, err := encodeTags(in.Tags)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO elements (id, dataset, title, description, tags_json, http_ref)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), prefix, in.Title, in.Description, tags, in.HTTPRef,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create element; %w", err)
	}

	return id.String(), nil
}

// GetElement returns one element's metadata.
func (s *Store) GetElement(ctx context.Context, prefix, id string) (*api.ElementRecord, error) {
	var rec api.ElementRecord
	var tags string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, tags_json, http_ref
		FROM elements WHERE dataset = ? AND id = ?`,
		prefix, id,
	).Scan(&rec.ID, &rec.Title, &rec.Description, &tags, &rec.HTTPRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrElementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element; %w", err)
	}

	if rec.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateElement replaces an element's metadata.
func (s *Store) UpdateElement(ctx context.Context, prefix, id string, in api.ElementInput) error {
	tags, err := encodeTags(in.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE elements
		SET title = ?, description = ?, tags_json = ?, http_ref = ?, updated_at = CURRENT_TIMESTAMP
		WHERE dataset = ? AND id = ?`,
		in.Title, in.Description, tags, in.HTTPRef, prefix, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update element; %w", err)
	}
	return requireAffected(result, ErrElementNotFound)
}

// DeleteElement removes an element and its content.
func (s *Store) DeleteElement(ctx context.Context, prefix, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM elements WHERE dataset = ? AND id = ?",
		prefix, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete element; %w", err)
	}
	return requireAffected(result, ErrElementNotFound)
}

// PutContent replaces an element's content.
func (s *Store) PutContent(ctx context.Context, prefix, id string, data []byte) (*ContentInfo, error) {
	if data == nil {
		data = []byte{}
	}
	info := &ContentInfo{Hash: fsutil.HashBytes(data), Size: len(data)}

	result, err := s.db.ExecContext(ctx, `
		UPDATE elements
		SET content = ?, content_hash = ?, content_size = ?, updated_at = CURRENT_TIMESTAMP
		WHERE dataset = ? AND id = ?`,
		data, info.Hash, info.Size, prefix, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store content; %w", err)
	}
	if err := requireAffected(result, ErrElementNotFound); err != nil {
		return nil, err
	}

	return info, nil
}

// GetContent returns an element's content. An element whose content was
// never uploaded has empty content.
func (s *Store) GetContent(ctx context.Context, prefix, id string) ([]byte, *ContentInfo, error) {
	var data []byte
	var hash sql.NullString
	var size int
	err := s.db.QueryRowContext(ctx, `
		SELECT content, content_hash, content_size
		FROM elements WHERE dataset = ? AND id = ?`,
		prefix, id,
	).Scan(&data, &hash, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrElementNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get content; %w", err)
	}

	if data == nil {
		data = []byte{}
	}
	info := &ContentInfo{Hash: hash.String, Size: size}
	if !hash.Valid {
		info.Hash = fsutil.HashBytes(data)
	}
	return data, info, nil
}

// Counts returns the number of stored datasets and elements.
func (s *Store) Counts(ctx context.Context) (datasets, elements int, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM datasets), (SELECT COUNT(*) FROM elements)",
	).Scan(&datasets, &elements)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count rows; %w", err)
	}
	return datasets, elements, nil
}

// CollectMetrics updates the storage gauges.
func (s *Store) CollectMetrics(ctx context.Context) error {
	datasets, elements, err := s.Counts(ctx)
	if err != nil {
		return err
	}
	metrics.UpdateServerMetrics(datasets, elements)
	return nil
}

func (s *Store) datasetExists(ctx context.Context, prefix string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM datasets WHERE url_prefix = ?", prefix,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDatasetNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up dataset; %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected; %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags; %w", err)
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	var tags []string
	if raw == "" {
		return []string{}, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags; %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}
