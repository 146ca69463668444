package config

import (
	"strings"
	"testing"
)

func TestValidate_Default(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad listen address", func(c *Config) { c.Server.ListenAddress = "8080" }, "server.listen_address"},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"zero source limit", func(c *Config) { c.Parser.MaxSourceBytes = 0 }, "parser.max_source_bytes"},
		{"unknown driver", func(c *Config) { c.Snippets.Driver = "mysql" }, "snippets.driver"},
		{"empty sqlite path", func(c *Config) { c.Snippets.SQLite.Path = "" }, "snippets.sqlite.path"},
		{"idle above open", func(c *Config) { c.Snippets.SQLite.MaxIdleConns = 50 }, "snippets.sqlite.max_idle_conns"},
		{"negative retention", func(c *Config) { c.Snippets.Retention.Days = -1 }, "snippets.retention.days"},
		{"bad cron", func(c *Config) { c.Snippets.Retention.PruneSchedule = "0 4 * *" }, "snippets.retention.prune_schedule"},
		{"max below default", func(c *Config) { c.Snippets.MaxListLimit = 10 }, "snippets.max_list_limit"},
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "loud" }, "telemetry.logging.level"},
		{"bad format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"relative metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"relative ready path", func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" }, "telemetry.health.readiness_path"},
		{"unknown sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"ratio above one", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "telemetry.tracing.sample_ratio"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -1 }, "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if len(verr.Errors) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(verr.Errors), verr)
			}
			if verr.Errors[0].Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Errors[0].Field)
			}
		})
	}
}

func TestValidate_MemoryDriverSkipsSQLite(t *testing.T) {
	cfg := Default()
	cfg.Snippets.Driver = "memory"
	cfg.Snippets.SQLite.Path = ""
	cfg.Snippets.SQLite.MaxOpenConns = 0

	if err := Validate(cfg); err != nil {
		t.Fatalf("memory driver should ignore sqlite settings: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	one := &ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := one.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", got)
	}

	two := &ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := two.Error()
	if !strings.HasPrefix(got, "configuration validation failed with 2 errors:") {
		t.Errorf("unexpected message %q", got)
	}
	if !strings.Contains(got, "  - b: worse") {
		t.Errorf("expected each field listed, got %q", got)
	}
}
