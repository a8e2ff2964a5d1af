package testutil

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/devserver"
)

// Remote is a development server running over a temporary SQLite file.
type Remote struct {
	URL    string
	Store  *devserver.Store
	Server *devserver.Server
	Client *api.Client
}

// NewRemote starts a development server with the given page size and returns
// it with a client pointed at it. Everything is torn down when the test ends.
func NewRemote(t *testing.T, pageSize int, opts ...api.Option) *Remote {
	t.Helper()

	ctx := context.Background()
	store, err := devserver.Open(ctx, filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("failed to open development store: %v", err)
	}

	srv := devserver.NewServer(store, devserver.Config{PageSize: pageSize})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})

	return &Remote{
		URL:    ts.URL,
		Store:  store,
		Server: srv,
		Client: api.New(ts.URL, opts...),
	}
}

// CreateDataset stores a dataset directly in the remote's store.
func (r *Remote) CreateDataset(t *testing.T, prefix, title string) {
	t.Helper()
	if err := r.Store.CreateDataset(context.Background(), api.DatasetRecord{URLPrefix: prefix, Title: title}); err != nil {
		t.Fatalf("failed to create dataset %s: %v", prefix, err)
	}
}

// NewRemoteEnv starts a development server and an isolated config environment
// whose api.base_url points at it, for exercising CLI commands end to end.
func NewRemoteEnv(t *testing.T, pageSize int) (*TestEnv, *Remote) {
	t.Helper()
	remote := NewRemote(t, pageSize)
	t.Setenv("MLDATA_API_BASE_URL", remote.URL)
	return NewTestEnv(t), remote
}
