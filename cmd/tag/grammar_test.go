package main

import (
	"strings"
	"testing"

	"tagbot/taglang/pkg/tag/grammar"
)

func resetGrammarFlags() {
	grammarFlags.file = ""
	grammarFlags.yaml = false
}

func TestRunGrammarShow(t *testing.T) {
	resetGrammarFlags()
	defer resetGrammarFlags()

	cmd, out := newTestCommand("")
	if err := runGrammarShow(cmd, nil); err != nil {
		t.Fatalf("runGrammarShow() error = %v", err)
	}
	for _, want := range []string{grammar.EmbeddedSource, "Keywords", "Trees"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunGrammarShow_YAML(t *testing.T) {
	resetGrammarFlags()
	defer resetGrammarFlags()
	grammarFlags.yaml = true

	cmd, out := newTestCommand("")
	if err := runGrammarShow(cmd, nil); err != nil {
		t.Fatalf("runGrammarShow() error = %v", err)
	}
	if out.String() != string(grammar.EmbeddedYAML()) {
		t.Error("--yaml did not print the embedded grammar")
	}
}

func TestRunGrammarCheck(t *testing.T) {
	resetGrammarFlags()
	defer resetGrammarFlags()

	cmd, out := newTestCommand("")
	if err := runGrammarCheck(cmd, nil); err != nil {
		t.Fatalf("runGrammarCheck() error = %v", err)
	}
	if !strings.Contains(out.String(), "is valid") {
		t.Errorf("output = %s", out)
	}
}

func TestRunGrammarCheck_BadFile(t *testing.T) {
	resetGrammarFlags()
	defer resetGrammarFlags()
	grammarFlags.file = writeFile(t, t.TempDir(), "bad.yaml", "name: [unclosed")

	cmd, _ := newTestCommand("")
	if err := runGrammarCheck(cmd, nil); err == nil {
		t.Fatal("expected an error for a malformed grammar")
	}
}
