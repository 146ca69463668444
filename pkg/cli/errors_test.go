package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("format", "unsupported"), "config error in format: unsupported"},
		{NewConfigError("", "no input"), "config error: no input"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("2 of 5 files have errors")
	err := NewCommandError("check", cause)

	if err.Error() != "command check failed: 2 of 5 files have errors" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to its cause")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailed},
		{"command", NewCommandError("parse", errors.New("syntax")), ExitFailed},
		{"config", NewConfigError("file", "missing"), ExitUsage},
		{"wrapped config", fmt.Errorf("serve: %w", NewConfigError("listen", "bad")), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
