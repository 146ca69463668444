package main

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()
	Version = "0.1.0-test"
	GitCommit = "abc123"

	cmd, out := newTestCommand("")
	versionCmd.Run(cmd, nil)

	for _, want := range []string{"tag 0.1.0-test", "Git Commit: abc123", "Grammar: tag 1.0", "Go Version: go"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"parse", "tree", "check", "grammar", "snippet", "serve", "version", "completion"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q is not registered", name)
		}
	}
}
