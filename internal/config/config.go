// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and MAILBOARD_ environment variables.
// - Validation errors wrap ErrInvalidConfig.
package config

// DefaultMaxUploadBytes is the 500 MB upload bound.
const DefaultMaxUploadBytes int64 = 500 * 1024 * 1024

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxUploadBytes rejects uploads larger than this before parsing.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ChunkSize bounds how many rows ingestion normalizes at a time.
	ChunkSize int `koanf:"chunk_size"`

	// CacheEntries bounds the number of normalized tables kept in memory.
	CacheEntries int `koanf:"cache_entries"`

	// UploadDir is where uploads are spooled before parsing. Empty means os.TempDir.
	UploadDir string `koanf:"upload_dir"`

	// DefaultTopN is the breakdown truncation used when a request omits ?top.
	DefaultTopN int `koanf:"default_top_n"`

	// SessionStore selects the display-session backend: memory or redis.
	SessionStore string `koanf:"session_store"`

	// RedisAddr is used when SessionStore is redis.
	RedisAddr string `koanf:"redis_addr"`

	// SessionTTLMinutes expires idle sessions.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// ForecastHorizon is the number of future days predicted by the opens forecaster.
	ForecastHorizon int `koanf:"forecast_horizon"`

	// ClassifierMinRows and ForecastMinPoints are the insight thresholds.
	ClassifierMinRows int `koanf:"classifier_min_rows"`
	ForecastMinPoints int `koanf:"forecast_min_points"`

	// AllowedOrigins configures CORS for the browser dashboard.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		MaxUploadBytes:    DefaultMaxUploadBytes,
		ChunkSize:         100_000,
		CacheEntries:      1,
		DefaultTopN:       5,
		SessionStore:      "memory",
		RedisAddr:         "localhost:6379",
		SessionTTLMinutes: 12 * 60,
		ForecastHorizon:   30,
		ClassifierMinRows: 100,
		ForecastMinPoints: 10,
		AllowedOrigins:    []string{"http://localhost:5173", "http://localhost:9080"},
	}
}
