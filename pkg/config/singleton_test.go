package config

import (
	"strings"
	"testing"
)

func TestSetConfig_GetConfig(t *testing.T) {
	old := GetConfig()
	defer SetConfig(old)

	cfg := Default()
	cfg.Server.ListenAddress = "127.0.0.1:1234"
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Error("GetConfig did not return the configuration set")
	}
	if got := MustGetConfig(); got.Server.ListenAddress != "127.0.0.1:1234" {
		t.Errorf("unexpected listen address %q", got.Server.ListenAddress)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	old := GetConfig()
	defer SetConfig(old)
	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("expected panic when configuration is not initialized")
		}
	}()
	MustGetConfig()
}

func TestReloadConfig(t *testing.T) {
	old := GetConfig()
	defer SetConfig(old)

	path := writeConfig(t, "telemetry:\n  logging:\n    level: error\n")
	cfg, err := ReloadConfig(path)
	if err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if cfg.Telemetry.Logging.Level != "error" {
		t.Errorf("expected level error, got %q", cfg.Telemetry.Logging.Level)
	}
	if GetConfig() != cfg {
		t.Error("reloaded configuration was not installed")
	}
	if Path() != path {
		t.Errorf("expected path %q, got %q", path, Path())
	}

	bad := writeConfig(t, "snippets:\n  driver: nope\n")
	if _, err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	} else if !strings.Contains(err.Error(), "failed to reload configuration") {
		t.Errorf("unexpected error: %v", err)
	}
	if GetConfig() != cfg {
		t.Error("failed reload replaced the active configuration")
	}
}
