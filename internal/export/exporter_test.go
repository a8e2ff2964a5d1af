package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/dataset"
	"github.com/leefowlercu/mldata/internal/interpreter"
	"github.com/leefowlercu/mldata/internal/testutil"
)

func seedDataset(t *testing.T, n int, opts ...dataset.Option) (*dataset.Dataset, []string) {
	t.Helper()
	remote := testutil.NewRemote(t, 3)
	remote.CreateDataset(t, "alice/digits", "Digits")

	ds, err := dataset.Open(context.Background(), remote.Client, "alice/digits", opts...)
	require.NoError(t, err)

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		el, err := ds.AddElement(context.Background(),
			api.ElementInput{
				Title:       fmt.Sprintf("digit %d", i),
				Description: fmt.Sprintf("sample, \"number\" %d", i),
				Tags:        []string{"digit", fmt.Sprint(i)},
				HTTPRef:     fmt.Sprintf("https://example.com/%d", i),
			},
			dataset.Bytes(fmt.Sprintf("pixels-%d", i)))
		require.NoError(t, err)
		ids = append(ids, el.ID())
	}
	return ds, ids
}

type recordingProgress struct {
	total    int
	advanced []string
	finished bool
}

func (p *recordingProgress) Start(total int)     { p.total = total }
func (p *recordingProgress) Advance(name string) { p.advanced = append(p.advanced, name) }
func (p *recordingProgress) Finish()             { p.finished = true }

func TestSaveToFolder_JSON(t *testing.T) {
	ds, ids := seedDataset(t, 7)
	folder := filepath.Join(t.TempDir(), "mirror")
	progress := &recordingProgress{}

	result, err := NewExporter().SaveToFolder(context.Background(), ds, folder, Options{
		Format:    "json",
		Extension: "png",
		Progress:  progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Elements)
	assert.Equal(t, 7, result.Written)
	assert.Empty(t, result.Failures)
	assert.Equal(t, filepath.Join(folder, "metadata.json"), result.MetadataFile)

	data, err := os.ReadFile(result.MetadataFile)
	require.NoError(t, err)

	var index map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Len(t, index, 7)

	for i, id := range ids {
		name := id + ".png"
		entry, ok := index[name]
		require.True(t, ok, "metadata missing %s", name)
		assert.Equal(t, id, entry["id"])
		assert.Equal(t, fmt.Sprintf("digit %d", i), entry["title"])

		content, err := os.ReadFile(filepath.Join(folder, ContentDir, name))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("pixels-%d", i), string(content))
	}

	entries, err := os.ReadDir(filepath.Join(folder, ContentDir))
	require.NoError(t, err)
	assert.Len(t, entries, 7)

	assert.Equal(t, 7, progress.total)
	assert.Len(t, progress.advanced, 7)
	assert.True(t, progress.finished)
}

func TestSaveToFolder_CSVEscaping(t *testing.T) {
	ds, ids := seedDataset(t, 2)
	folder := t.TempDir()

	_, err := NewExporter().SaveToFolder(context.Background(), ds, folder, Options{Format: "csv"})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(folder, "metadata.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"file_name", "id", "title", "description", "http_ref", "tags"}, rows[0])
	assert.Equal(t, ids[0], rows[1][0], "no extension means file name equals id")
	assert.Equal(t, `sample, "number" 0`, rows[1][3])
	assert.Equal(t, "digit;0", rows[1][5])
}

func TestSaveToFolder_UnsupportedFormat(t *testing.T) {
	ds, _ := seedDataset(t, 1)
	folder := filepath.Join(t.TempDir(), "never")

	_, err := NewExporter().SaveToFolder(context.Background(), ds, folder, Options{Format: "xml"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, statErr := os.Stat(folder)
	assert.True(t, os.IsNotExist(statErr), "no I/O should happen for an unsupported format")
}

func TestSaveToFolder_ExtensionNormalised(t *testing.T) {
	ds, ids := seedDataset(t, 1)
	folder := t.TempDir()

	_, err := NewExporter().SaveToFolder(context.Background(), ds, folder, Options{Format: "yaml", Extension: ".jpg"})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(folder, ContentDir, ids[0]+".jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(folder, "metadata.yaml"))
	assert.NoError(t, err)
}

func TestSaveToFolder_ContentNotDeciphered(t *testing.T) {
	remote := testutil.NewRemote(t, 3)
	remote.CreateDataset(t, "enc", "")
	key := make([]byte, 32)
	in, err := interpreter.NewAEAD(key)
	require.NoError(t, err)

	ds, err := dataset.Open(context.Background(), remote.Client, "enc", dataset.WithInterpreter(in))
	require.NoError(t, err)
	el, err := ds.AddElement(context.Background(), api.ElementInput{Title: "secret"}, dataset.Bytes("plaintext"))
	require.NoError(t, err)

	folder := t.TempDir()
	_, err = NewExporter().SaveToFolder(context.Background(), ds, folder, Options{Format: "toml"})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(folder, ContentDir, el.ID()))
	require.NoError(t, err)
	assert.NotEqual(t, "plaintext", string(raw))

	stored, err := el.Content(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, stored, raw)
}

// failingSource fails content lookups for one id.
type failingSource struct {
	*dataset.Dataset
	failID string
}

func (s failingSource) Get(ctx context.Context, id string) (*dataset.Element, error) {
	if id == s.failID {
		return nil, errors.New("boom")
	}
	return s.Dataset.Get(ctx, id)
}

func TestSaveToFolder_PartialFailure(t *testing.T) {
	ds, ids := seedDataset(t, 4)
	folder := t.TempDir()

	src := failingSource{Dataset: ds, failID: ids[2]}
	result, err := NewExporter().SaveToFolder(context.Background(), src, folder, Options{Format: "json"})

	var partial *PartialExportError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 4, partial.Total)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, ids[2], partial.Failures[0].ID)

	require.NotNil(t, result)
	assert.Equal(t, 3, result.Written)

	// Metadata still lists every element.
	data, err := os.ReadFile(result.MetadataFile)
	require.NoError(t, err)
	var index map[string]any
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Len(t, index, 4)

	_, statErr := os.Stat(filepath.Join(folder, ContentDir, ids[2]))
	assert.True(t, os.IsNotExist(statErr))
}

// duplicatingSource lists its first element twice.
type duplicatingSource struct {
	*dataset.Dataset
}

func (s duplicatingSource) All(ctx context.Context) iter.Seq2[*dataset.Element, error] {
	return func(yield func(*dataset.Element, error) bool) {
		var first *dataset.Element
		for el, err := range s.Dataset.All(ctx) {
			if !yield(el, err) || err != nil {
				return
			}
			if first == nil {
				first = el
			}
		}
		if first != nil {
			yield(first, nil)
		}
	}
}

func TestSaveToFolder_DuplicateKeepsPosition(t *testing.T) {
	ds, ids := seedDataset(t, 3)
	folder := t.TempDir()

	result, err := NewExporter().SaveToFolder(context.Background(), duplicatingSource{ds}, folder, Options{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Elements)

	f, err := os.Open(result.MetadataFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, ids[0], rows[1][1])
}

func TestSaveToFolder_Cancelled(t *testing.T) {
	ds, _ := seedDataset(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter().SaveToFolder(ctx, ds, t.TempDir(), Options{Format: "json"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"abc.png", true},
		{"abc", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFileName(tt.name), tt.name)
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "toml", "yaml"}, NewExporter().Formats())
}
