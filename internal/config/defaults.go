package config

import "github.com/spf13/viper"

// Application identity used for paths and environment variables.
const (
	AppName      = "mldata"
	EnvPrefix    = "MLDATA"
	EnvConfigDir = "MLDATA_CONFIG_DIR"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/mldata/mldata.log"

	DefaultAPIBaseURL        = "http://127.0.0.1:7700"
	DefaultAPITokenEnv       = "MLDATA_TOKEN"
	DefaultAPITimeoutSeconds = 30
	DefaultAPIRateLimit      = 0.0 // requests per second, 0 = unlimited
	DefaultAPIRateBurst      = 1

	DefaultInterpreterKind          = "identity"
	DefaultInterpreterCompression   = "none"
	DefaultInterpreterPassphraseEnv = "MLDATA_PASSPHRASE"
	DefaultInterpreterKeyEnv        = "MLDATA_CONTENT_KEY"

	DefaultExportFormat = "json"

	DefaultServerBind     = "127.0.0.1"
	DefaultServerPort     = 7700
	DefaultServerDBPath   = "~/.config/mldata/server.db"
	DefaultServerPageSize = 20
)

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			TokenEnv:       DefaultAPITokenEnv,
			TimeoutSeconds: DefaultAPITimeoutSeconds,
			RateLimit:      DefaultAPIRateLimit,
			RateBurst:      DefaultAPIRateBurst,
		},
		Interpreter: InterpreterConfig{
			Kind:          DefaultInterpreterKind,
			Compression:   DefaultInterpreterCompression,
			PassphraseEnv: DefaultInterpreterPassphraseEnv,
			KeyEnv:        DefaultInterpreterKeyEnv,
		},
		Export: ExportConfig{
			Format: DefaultExportFormat,
		},
		Server: ServerConfig{
			Bind:     DefaultServerBind,
			Port:     DefaultServerPort,
			DBPath:   DefaultServerDBPath,
			PageSize: DefaultServerPageSize,
		},
	}
}

// setDefaults registers all default configuration values with a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	// API defaults
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.token", "")
	v.SetDefault("api.token_env", DefaultAPITokenEnv)
	v.SetDefault("api.owner", "")
	v.SetDefault("api.timeout_seconds", DefaultAPITimeoutSeconds)
	v.SetDefault("api.rate_limit", DefaultAPIRateLimit)
	v.SetDefault("api.rate_burst", DefaultAPIRateBurst)

	// Interpreter defaults
	v.SetDefault("interpreter.kind", DefaultInterpreterKind)
	v.SetDefault("interpreter.compression", DefaultInterpreterCompression)
	v.SetDefault("interpreter.age_identity_file", "")
	v.SetDefault("interpreter.age_recipients", []string{})
	v.SetDefault("interpreter.passphrase_env", DefaultInterpreterPassphraseEnv)
	v.SetDefault("interpreter.scrypt_work_factor", 0)
	v.SetDefault("interpreter.key_env", DefaultInterpreterKeyEnv)

	// Export defaults
	v.SetDefault("export.format", DefaultExportFormat)
	v.SetDefault("export.extension", "")

	// Development server defaults
	v.SetDefault("server.bind", DefaultServerBind)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.db_path", DefaultServerDBPath)
	v.SetDefault("server.page_size", DefaultServerPageSize)
}
