package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv(EnvConfigDir, tmpDir)
	t.Setenv("HOME", tmpDir)

	origDir, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
		Reset()
	})

	Reset()
	return tmpDir
}

func TestInit_NoConfigFile_UsesDefaults(t *testing.T) {
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error when no config file exists: %v", err)
	}

	if path := ConfigFilePath(); path != "" {
		t.Errorf("ConfigFilePath() = %q, want empty string when no config file", path)
	}

	cfg := Get()
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, DefaultAPIBaseURL)
	}
	if cfg.Server.PageSize != DefaultServerPageSize {
		t.Errorf("Server.PageSize = %d, want %d", cfg.Server.PageSize, DefaultServerPageSize)
	}
}

func TestInit_ConfigInEnvDir_LoadsFromEnvDir(t *testing.T) {
	dir := isolate(t)

	configPath := filepath.Join(dir, "config.yaml")
	content := "api:\n  base_url: https://data.example.com\n  owner: alice\nserver:\n  page_size: 5\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := ConfigFilePath(); got != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", got, configPath)
	}

	cfg := Get()
	if cfg.API.BaseURL != "https://data.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Owner != "alice" {
		t.Errorf("API.Owner = %q, want alice", cfg.API.Owner)
	}
	if cfg.Server.PageSize != 5 {
		t.Errorf("Server.PageSize = %d, want 5", cfg.Server.PageSize)
	}
}

func TestInit_InvalidYAML_ReturnsError(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Init(); err == nil {
		t.Error("Init() expected error for invalid YAML")
	}
}

func TestInit_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("MLDATA_EXPORT_FORMAT", "csv")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := Get().Export.Format; got != "csv" {
		t.Errorf("Export.Format = %q, want csv from environment", got)
	}
}

func TestSet_InvalidatesCachedConfig(t *testing.T) {
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	_ = Get()

	Set("api.owner", "bob")
	if got := Get().API.Owner; got != "bob" {
		t.Errorf("API.Owner = %q after Set, want bob", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"~", home},
		{"~/data/file.db", filepath.Join(home, "data/file.db")},
		{"~other/file", "~other/file"},
	}

	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("interpreter:\n  compression: zstd\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Interpreter.Compression != "zstd" {
		t.Errorf("Interpreter.Compression = %q, want zstd", cfg.Interpreter.Compression)
	}
	if cfg.Interpreter.Kind != DefaultInterpreterKind {
		t.Errorf("Interpreter.Kind = %q, want default %q", cfg.Interpreter.Kind, DefaultInterpreterKind)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("LoadFromPath() expected validation error")
	}
	if !IsValidationError(err) {
		t.Errorf("expected validation error, got %T", err)
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error %q should name server.port", err)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewDefaultConfig()
	cfg.API.Owner = "carol"
	cfg.Export.Format = "yaml"

	if err := Write(&cfg, path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perms = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.API.Owner != "carol" || loaded.Export.Format != "yaml" {
		t.Errorf("round trip mismatch: owner=%q format=%q", loaded.API.Owner, loaded.Export.Format)
	}
}

func TestResolveToken(t *testing.T) {
	t.Setenv("TEST_MLDATA_TOKEN", "from-env")

	c := APIConfig{TokenEnv: "TEST_MLDATA_TOKEN"}
	if got := c.ResolveToken(); got != "from-env" {
		t.Errorf("ResolveToken() = %q, want from-env", got)
	}

	c.Token = "inline"
	if got := c.ResolveToken(); got != "inline" {
		t.Errorf("ResolveToken() = %q, want inline", got)
	}
}

func TestLoad_StrictAboutInvalidFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without a file error = %v", err)
	}
	if cfg.Export.Format != DefaultExportFormat {
		t.Errorf("Export.Format = %q, want %q", cfg.Export.Format, DefaultExportFormat)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("export:\n  format: xml\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := Load(); !IsValidationError(err) {
		t.Errorf("Load() error = %v, want validation error", err)
	}
}
