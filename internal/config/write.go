package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# mldata configuration\n# Every key can be overridden with an " + EnvPrefix + "_* environment variable.\n\n"

// Write stores cfg as YAML at path. The directory is created 0700 and the
// file replaced atomically with mode 0600, since it may hold an API token.
func Write(cfg *Config, path string) error {
	path = ExpandHome(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s; %w", dir, err)
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config; %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config; %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp config file; %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file %s; %w", path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set config file mode; %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file %s; %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file %s; %w", path, err)
	}
	return nil
}
