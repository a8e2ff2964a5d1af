package config

import "os"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel    string            `yaml:"log_level" mapstructure:"log_level"`
	LogFile     string            `yaml:"log_file" mapstructure:"log_file"`
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Interpreter InterpreterConfig `yaml:"interpreter" mapstructure:"interpreter"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// APIConfig holds remote API client configuration.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Token          string  `yaml:"token,omitempty" mapstructure:"token"`
	TokenEnv       string  `yaml:"token_env" mapstructure:"token_env"`
	Owner          string  `yaml:"owner,omitempty" mapstructure:"owner"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ResolveToken returns the token from config or falls back to the environment variable.
func (c *APIConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}

// InterpreterConfig selects the content interpretation pipeline.
type InterpreterConfig struct {
	Kind             string   `yaml:"kind" mapstructure:"kind"`
	Compression      string   `yaml:"compression" mapstructure:"compression"`
	AgeIdentityFile  string   `yaml:"age_identity_file,omitempty" mapstructure:"age_identity_file"`
	AgeRecipients    []string `yaml:"age_recipients,flow,omitempty" mapstructure:"age_recipients"`
	PassphraseEnv    string   `yaml:"passphrase_env" mapstructure:"passphrase_env"`
	ScryptWorkFactor int      `yaml:"scrypt_work_factor,omitempty" mapstructure:"scrypt_work_factor"`
	KeyEnv           string   `yaml:"key_env" mapstructure:"key_env"`
}

// ExportConfig holds defaults for local mirror exports.
type ExportConfig struct {
	Format    string `yaml:"format" mapstructure:"format"`
	Extension string `yaml:"extension,omitempty" mapstructure:"extension"`
}

// ServerConfig holds development server configuration.
type ServerConfig struct {
	Bind     string `yaml:"bind" mapstructure:"bind"`
	Port     int    `yaml:"port" mapstructure:"port"`
	DBPath   string `yaml:"db_path" mapstructure:"db_path"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}
