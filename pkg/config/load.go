package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable that overrides a
// configuration value.
const EnvPrefix = "TAG_"

// LoadConfig loads configuration from a YAML or TOML file at the specified
// path; files ending in .toml are read as TOML. It decodes the file on top
// of Default, applies defaults for any values left empty, and validates the
// final configuration.
// Returns an error if the file cannot be read, parsed, or fails validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return parseConfig(data, path, false)
}

// LoadConfigWithEnvOverrides loads configuration like LoadConfig and then
// applies environment variable overrides.
// Environment variables use the TAG_ prefix and follow the pattern:
// TAG_<SECTION>_<FIELD> (e.g., TAG_SERVER_LISTEN_ADDRESS)
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return parseConfig(data, path, true)
}

// LoadConfigFromBytes parses configuration held in memory. The extension of
// the source name selects the format, as for LoadConfig; the name otherwise
// only appears in error messages.
func LoadConfigFromBytes(data []byte, source string) (*Config, error) {
	return parseConfig(data, source, false)
}

func parseConfig(data []byte, source string, env bool) (*Config, error) {
	cfg := Default()
	if err := decode(data, source, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", source, err)
	}

	ApplyDefaults(cfg)

	if env {
		if err := applyEnvOverrides(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// decode unmarshals data into cfg in the format named by the extension of
// source.
func decode(data []byte, source string, cfg *Config) error {
	if IsTOML(source) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// IsTOML reports whether path names a TOML configuration file.
func IsTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	// Server overrides
	if v := getenv("SERVER_LISTEN_ADDRESS"); v != "" {
		cfg.Server.ListenAddress = v
	}
	if err := envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout); err != nil {
		return err
	}
	if err := envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout); err != nil {
		return err
	}
	if err := envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	// Parser overrides
	if v := getenv("PARSER_GRAMMAR_FILE"); v != "" {
		cfg.Parser.GrammarFile = v
	}
	if err := envInt("PARSER_MAX_SOURCE_BYTES", &cfg.Parser.MaxSourceBytes); err != nil {
		return err
	}

	// Snippet overrides
	if err := envBool("SNIPPETS_ENABLED", &cfg.Snippets.Enabled); err != nil {
		return err
	}
	if v := getenv("SNIPPETS_DRIVER"); v != "" {
		cfg.Snippets.Driver = v
	}
	if v := getenv("SNIPPETS_SQLITE_PATH"); v != "" {
		cfg.Snippets.SQLite.Path = v
	}
	if err := envInt("SNIPPETS_RETENTION_DAYS", &cfg.Snippets.Retention.Days); err != nil {
		return err
	}
	if v := getenv("SNIPPETS_RETENTION_PRUNE_SCHEDULE"); v != "" {
		cfg.Snippets.Retention.PruneSchedule = v
	}

	// Telemetry overrides
	if v := getenv("TELEMETRY_LOGGING_LEVEL"); v != "" {
		cfg.Telemetry.Logging.Level = v
	}
	if v := getenv("TELEMETRY_LOGGING_FORMAT"); v != "" {
		cfg.Telemetry.Logging.Format = v
	}
	if err := envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled); err != nil {
		return err
	}
	if err := envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled); err != nil {
		return err
	}
	if v := getenv("TELEMETRY_TRACING_ENDPOINT"); v != "" {
		cfg.Telemetry.Tracing.Endpoint = v
	}
	if err := envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio); err != nil {
		return err
	}

	// Watch overrides
	if err := envBool("WATCH_ENABLED", &cfg.Watch.Enabled); err != nil {
		return err
	}

	return nil
}

func getenv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func envInt(name string, dst *int) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = n
	return nil
}

func envBool(name string, dst *bool) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = b
	return nil
}

func envFloat(name string, dst *float64) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = f
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = d
	return nil
}
