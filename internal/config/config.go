package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

var (
	mu       sync.Mutex
	loaded   string
	resolved *Config
)

// Init loads configuration into the process-wide viper instance. Files are
// searched in $MLDATA_CONFIG_DIR, ~/.config/mldata and the working
// directory, first match wins. Without a file the defaults apply together
// with MLDATA_* environment overrides.
func Init() error {
	v := viper.GetViper()
	prepare(v)
	addSearchPaths(v)

	found, err := readIfPresent(v)
	if err != nil {
		return err
	}

	mu.Lock()
	loaded = ""
	if found {
		loaded = v.ConfigFileUsed()
	}
	resolved = nil
	mu.Unlock()

	slog.Debug("config initialized", "file", loaded)
	return nil
}

// Get returns the typed configuration, resolved once per Init/Reset.
// Settings that fail to decode or validate fall back to defaults with a
// warning; LoadFromPath reports them instead.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if resolved == nil {
		cfg, err := decode(viper.GetViper())
		if err != nil {
			slog.Warn("invalid configuration; using defaults", "error", err)
			def := NewDefaultConfig()
			cfg = &def
		}
		resolved = cfg
	}
	return resolved
}

// ConfigFilePath is the file Init loaded, or "" when running on defaults.
func ConfigFilePath() string {
	mu.Lock()
	defer mu.Unlock()
	return loaded
}

// GetConfigPath is the loaded file, else the default location.
func GetConfigPath() string {
	if p := ConfigFilePath(); p != "" {
		return p
	}
	return DefaultConfigPath()
}

// Reset drops all configuration state. Tests call it between cases.
func Reset() {
	viper.Reset()

	mu.Lock()
	loaded = ""
	resolved = nil
	mu.Unlock()
}

// Set overrides a single key until the next Reset.
func Set(key string, value any) {
	viper.Set(key, value)

	mu.Lock()
	resolved = nil
	mu.Unlock()
}

// GetString returns the raw string setting for key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetPath is GetString with a leading ~ expanded.
func GetPath(key string) string {
	return ExpandHome(viper.GetString(key))
}

// ExpandHome replaces a leading "~" or "~/" with the home directory.
// Other forms, including "~user", are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && path[1] == '/'
}
