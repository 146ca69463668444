package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Parser defaults
	DefaultMaxSourceBytes = 65536

	// Snippet defaults
	DefaultSnippetsEnabled         = true
	DefaultSnippetsDriver          = "sqlite"
	DefaultSQLitePath              = "data/snippets.db"
	DefaultSQLiteMaxOpenConns      = 10
	DefaultSQLiteMaxIdleConns      = 5
	DefaultSQLiteWALMode           = true
	DefaultSQLiteBusyTimeout       = 5 * time.Second
	DefaultRetentionDays           = 180
	DefaultRetentionMaxRecords     = int64(0)
	DefaultRetentionPruneSchedule  = "0 4 * * *"
	DefaultSnippetsDefaultListSize = 50
	DefaultSnippetsMaxListSize     = 500

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "tag"
	DefaultHealthEnabled      = true
	DefaultHealthLivenessPath = "/health"
	DefaultHealthReadyPath    = "/ready"
	DefaultHealthCheckTimeout = 2 * time.Second
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "tag"
	DefaultOTLPTimeout        = 10 * time.Second

	// Watch defaults
	DefaultWatchDebounce = 250 * time.Millisecond
)

// Default returns a configuration with every default applied, including the
// boolean settings that default to true. LoadConfig decodes YAML on top of
// it, so a file only needs to name what it changes.
func Default() *Config {
	cfg := &Config{}
	cfg.Snippets.Enabled = DefaultSnippetsEnabled
	cfg.Snippets.SQLite.WALMode = DefaultSQLiteWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values. Booleans are left
// alone because false cannot be told apart from unset; see Default.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Parser defaults
	if cfg.Parser.MaxSourceBytes == 0 {
		cfg.Parser.MaxSourceBytes = DefaultMaxSourceBytes
	}

	// Snippet defaults
	if cfg.Snippets.Driver == "" {
		cfg.Snippets.Driver = DefaultSnippetsDriver
	}
	if cfg.Snippets.SQLite.Path == "" {
		cfg.Snippets.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Snippets.SQLite.MaxOpenConns == 0 {
		cfg.Snippets.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Snippets.SQLite.MaxIdleConns == 0 {
		cfg.Snippets.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Snippets.SQLite.BusyTimeout == 0 {
		cfg.Snippets.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Snippets.Retention.Days == 0 {
		cfg.Snippets.Retention.Days = DefaultRetentionDays
	}
	if cfg.Snippets.Retention.PruneSchedule == "" {
		cfg.Snippets.Retention.PruneSchedule = DefaultRetentionPruneSchedule
	}
	if cfg.Snippets.DefaultListLimit == 0 {
		cfg.Snippets.DefaultListLimit = DefaultSnippetsDefaultListSize
	}
	if cfg.Snippets.MaxListLimit == 0 {
		cfg.Snippets.MaxListLimit = DefaultSnippetsMaxListSize
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadyPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 && cfg.Telemetry.Tracing.Sampler == DefaultTracingSampler {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
