package config

import "time"

// Config is the root configuration structure for the tag service.
// It contains all configuration sections for the HTTP server, the parser,
// the snippet library, telemetry and configuration hot reload.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server" toml:"server"`

	// Parser contains configuration for the tag parser: which grammar to
	// load and how much source a single request may submit.
	Parser ParserConfig `yaml:"parser" toml:"parser"`

	// Snippets contains configuration for the snippet library including
	// storage backend selection and retention.
	Snippets SnippetsConfig `yaml:"snippets" toml:"snippets"`

	// Telemetry contains configuration for logging, metrics and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`

	// Watch controls hot reload of this configuration file.
	Watch WatchConfig `yaml:"watch" toml:"watch"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header.
	// Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes" toml:"max_header_bytes"`
}

// ParserConfig contains configuration for the tag parser.
type ParserConfig struct {
	// GrammarFile is an optional path to a grammar YAML file. When empty
	// the grammar embedded in the binary is used.
	GrammarFile string `yaml:"grammar_file" toml:"grammar_file"`

	// MaxSourceBytes is the largest tag source accepted over HTTP and by
	// the snippet library.
	// Default: 65536
	MaxSourceBytes int `yaml:"max_source_bytes" toml:"max_source_bytes"`
}

// SnippetsConfig contains configuration for the snippet library.
type SnippetsConfig struct {
	// Enabled controls whether snippet endpoints and storage are active.
	// Default: true
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Driver selects the storage backend.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go,
	// modernc.org/sqlite), "memory"
	// Default: "sqlite"
	Driver string `yaml:"driver" toml:"driver"`

	// SQLite contains SQLite-specific configuration, used by both SQLite drivers.
	SQLite SQLiteConfig `yaml:"sqlite" toml:"sqlite"`

	// Retention contains snippet pruning configuration.
	Retention RetentionConfig `yaml:"retention" toml:"retention"`

	// DefaultListLimit is the page size used when a list request sets none.
	// Default: 50
	DefaultListLimit int `yaml:"default_list_limit" toml:"default_list_limit"`

	// MaxListLimit caps the page size of list requests.
	// Default: 500
	MaxListLimit int `yaml:"max_list_limit" toml:"max_list_limit"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/snippets.db"
	Path string `yaml:"path" toml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" toml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode" toml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" toml:"busy_timeout"`
}

// RetentionConfig contains snippet retention configuration.
type RetentionConfig struct {
	// Days is the number of days a snippet may go unused before it is pruned.
	// 0 means keep snippets forever.
	// Default: 180
	Days int `yaml:"days" toml:"days"`

	// MaxRecords is the maximum number of snippets to keep; the least
	// recently used are pruned first. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records" toml:"max_records"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 4 * * *" (daily at 4 AM)
	PruneSchedule string `yaml:"prune_schedule" toml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing" toml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health" toml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. It can be changed by a
	// configuration reload without restarting.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" toml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format" toml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" toml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Path is the HTTP path metrics are served on.
	// Default: "/metrics"
	Path string `yaml:"path" toml:"path"`

	// Namespace prefixes every metric name.
	// Default: "tag"
	Namespace string `yaml:"namespace" toml:"namespace"`

	// Subsystem is inserted between namespace and metric name.
	// Default: ""
	Subsystem string `yaml:"subsystem" toml:"subsystem"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler" toml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio"; zero selects the default.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio" toml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint" toml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "tag"
	ServiceName string `yaml:"service_name" toml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp" toml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure" toml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// HealthConfig contains health check configuration.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// LivenessPath is the path of the liveness endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path" toml:"liveness_path"`

	// ReadinessPath is the path of the readiness endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path" toml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout" toml:"check_timeout"`
}

// WatchConfig contains configuration hot reload settings.
type WatchConfig struct {
	// Enabled reloads the configuration file when it changes on disk.
	// Default: false
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Debounce is the quiet period after a change before reloading.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}
