package serve

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/leefowlercu/mldata/internal/api"
	"github.com/leefowlercu/mldata/internal/testutil"
)

func resetFlags() {
	serveBind, servePort, serveDBPath, servePageSize = "", 0, "", 0
	ServeCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServeCommand(t *testing.T) {
	testutil.NewTestEnv(t)
	resetFlags()

	port := freePort(t)
	dbPath := filepath.Join(t.TempDir(), "serve.db")
	ServeCmd.SetArgs([]string{"--bind", "127.0.0.1", "--port", strconv.Itoa(port), "--db", dbPath, "--page-size", "2"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeCmd.ExecuteContext(ctx) }()

	base := "http://127.0.0.1:" + strconv.Itoa(port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	client := api.New(base)
	if _, err := client.CreateDataset(context.Background(), api.DatasetRecord{URLPrefix: "ds"}); err != nil {
		t.Fatalf("CreateDataset() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := client.CreateElement(context.Background(), "ds", api.ElementInput{Title: "e"}); err != nil {
			t.Fatalf("CreateElement() error = %v", err)
		}
	}
	page, err := client.ListElements(context.Background(), "ds", 0)
	if err != nil {
		t.Fatalf("ListElements() error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("first page has %d elements, want 2", len(page))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeCommand_InvalidFlags(t *testing.T) {
	testutil.NewTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"port out of range", []string{"--port", "70000"}},
		{"zero page size", []string{"--page-size", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			ServeCmd.SetArgs(tt.args)
			if err := ServeCmd.ExecuteContext(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
