package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validInterpreterKinds = map[string]bool{
	"identity":       true,
	"age":            true,
	"age-passphrase": true,
	"aead":           true,
}

var validCompressions = map[string]bool{
	"none": true,
	"zstd": true,
	"lz4":  true,
}

// validExportFormats mirrors the formatters registered by export.NewExporter.
var validExportFormats = map[string]bool{
	"json": true,
	"csv":  true,
	"yaml": true,
	"toml": true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.LogLevel != "" && !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	// Validate API config
	if cfg.API.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.API.BaseURL),
		})
	}

	if cfg.API.TimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_seconds",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.API.TimeoutSeconds),
		})
	}

	if cfg.API.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.rate_limit",
			Message: fmt.Sprintf("must be non-negative, got %g", cfg.API.RateLimit),
		})
	}

	if cfg.API.RateBurst < 1 {
		errs = append(errs, ValidationError{
			Field:   "api.rate_burst",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.API.RateBurst),
		})
	}

	// Validate interpreter config
	if !validInterpreterKinds[cfg.Interpreter.Kind] {
		errs = append(errs, ValidationError{
			Field:   "interpreter.kind",
			Message: fmt.Sprintf("must be one of: identity, age, age-passphrase, aead; got %q", cfg.Interpreter.Kind),
		})
	}

	if !validCompressions[cfg.Interpreter.Compression] {
		errs = append(errs, ValidationError{
			Field:   "interpreter.compression",
			Message: fmt.Sprintf("must be one of: none, zstd, lz4; got %q", cfg.Interpreter.Compression),
		})
	}

	if cfg.Interpreter.Kind == "age" && cfg.Interpreter.AgeIdentityFile == "" {
		errs = append(errs, ValidationError{
			Field:   "interpreter.age_identity_file",
			Message: "must not be empty when kind is age",
		})
	}

	// Validate export config
	if !validExportFormats[cfg.Export.Format] {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("must be one of: json, csv, yaml, toml; got %q", cfg.Export.Format),
		})
	}

	// Validate server config
	if cfg.Server.Bind == "" {
		errs = append(errs, ValidationError{
			Field:   "server.bind",
			Message: "must not be empty",
		})
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.Port),
		})
	}

	if cfg.Server.DBPath == "" {
		errs = append(errs, ValidationError{
			Field:   "server.db_path",
			Message: "must not be empty",
		})
	}

	if cfg.Server.PageSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "server.page_size",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Server.PageSize),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
