// Package testutil sets up isolated configuration and a development remote
// for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/mldata/internal/config"
)

// TestEnv is a private configuration environment rooted in a temp dir.
type TestEnv struct {
	ConfigDir string
	LogFile   string
	DBPath    string
}

// NewTestEnv points every configured path at a fresh temp dir, clears the
// API token and loads configuration from scratch. Environment variables
// set with t.Setenv before the call take effect; config.Set values do not
// survive it. State is reset when the test ends.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}
	env := &TestEnv{
		ConfigDir: dir,
		LogFile:   filepath.Join(dir, "mldata.log"),
		DBPath:    filepath.Join(dir, "server.db"),
	}

	t.Setenv(config.EnvConfigDir, env.ConfigDir)
	t.Setenv(config.EnvPrefix+"_LOG_FILE", env.LogFile)
	t.Setenv(config.EnvPrefix+"_SERVER_DB_PATH", env.DBPath)
	t.Setenv(config.DefaultAPITokenEnv, "")
	t.Setenv(config.EnvPrefix+"_API_TOKEN", "")

	config.Reset()
	t.Cleanup(config.Reset)
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}
	return env
}
